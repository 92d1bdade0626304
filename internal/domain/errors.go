package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode string

// ErrorKind groups error codes by how they are reported to the caller
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindStateConflict    ErrorKind = "state_conflict"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindUnknownCommand   ErrorKind = "unknown_command"
	KindStoreIO          ErrorKind = "store_io"
	KindStoreCorrupt     ErrorKind = "store_corrupt"
	KindInternal         ErrorKind = "internal"
)

// Error codes for different categories
const (
	// Validation Errors (2xxx)
	ErrCodeInvalidArgument ErrorCode = "VALID_2001"
	ErrCodeInvalidScore    ErrorCode = "VALID_2002"
	ErrCodeInvalidOutcome  ErrorCode = "VALID_2003"
	ErrCodeEmptyField      ErrorCode = "VALID_2004"
	ErrCodeSelfRating      ErrorCode = "VALID_2005"
	ErrCodeUnknownJob      ErrorCode = "VALID_2006"

	// State Conflict Errors (3xxx)
	ErrCodeDuplicateApplication    ErrorCode = "STATE_3001"
	ErrCodeNoApplication           ErrorCode = "STATE_3002"
	ErrCodeWarningNotFound         ErrorCode = "STATE_3003"
	ErrCodeDuplicateRater          ErrorCode = "STATE_3004"
	ErrCodeDuplicateJobApplication ErrorCode = "STATE_3005"
	ErrCodeJobApplicationNotFound  ErrorCode = "STATE_3006"

	// Permission Errors (4xxx)
	ErrCodePermissionDenied ErrorCode = "AUTH_4001"

	// Routing Errors (5xxx)
	ErrCodeUnknownCommand ErrorCode = "CMD_5001"

	// Store Errors (6xxx)
	ErrCodeStoreIO      ErrorCode = "STORE_6001"
	ErrCodeStoreCorrupt ErrorCode = "STORE_6002"

	// Server Errors (7xxx)
	ErrCodeInternal ErrorCode = "SERVER_7001"
)

// AppError represents a structured application error. Hint tells the user
// how to get out of a state conflict.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Hint    string    `json:"hint,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code, so the sentinels below
// match any detailed instance built by the constructors.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, kind ErrorKind, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

func (e *AppError) withHint(hint string) *AppError {
	e.Hint = hint
	return e
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidArgument         = NewAppError(ErrCodeInvalidArgument, KindValidation, "Invalid argument", "", nil)
	ErrInvalidScore            = NewAppError(ErrCodeInvalidScore, KindValidation, "Score out of range", "", nil)
	ErrInvalidOutcome          = NewAppError(ErrCodeInvalidOutcome, KindValidation, "Invalid decision outcome", "", nil)
	ErrEmptyField              = NewAppError(ErrCodeEmptyField, KindValidation, "Required field is empty", "", nil)
	ErrSelfRating              = NewAppError(ErrCodeSelfRating, KindValidation, "You cannot rate yourself", "", nil)
	ErrUnknownJob              = NewAppError(ErrCodeUnknownJob, KindValidation, "Unknown job", "", nil)
	ErrDuplicateApplication    = NewAppError(ErrCodeDuplicateApplication, KindStateConflict, "Application already pending", "", nil)
	ErrNoApplication           = NewAppError(ErrCodeNoApplication, KindStateConflict, "No pending application", "", nil)
	ErrWarningNotFound         = NewAppError(ErrCodeWarningNotFound, KindStateConflict, "Warning not found", "", nil)
	ErrDuplicateRater          = NewAppError(ErrCodeDuplicateRater, KindStateConflict, "Already rated recently", "", nil)
	ErrDuplicateJobApplication = NewAppError(ErrCodeDuplicateJobApplication, KindStateConflict, "Job application already pending", "", nil)
	ErrJobApplicationNotFound  = NewAppError(ErrCodeJobApplicationNotFound, KindStateConflict, "Job application not found", "", nil)
	ErrPermissionDenied        = NewAppError(ErrCodePermissionDenied, KindPermissionDenied, "Permission denied", "", nil)
	ErrUnknownCommand          = NewAppError(ErrCodeUnknownCommand, KindUnknownCommand, "Command not recognized", "", nil)
	ErrStoreIO                 = NewAppError(ErrCodeStoreIO, KindStoreIO, "Store I/O failure", "", nil)
	ErrStoreCorrupt            = NewAppError(ErrCodeStoreCorrupt, KindStoreCorrupt, "Stored collection is corrupt", "", nil)
)

// Validation errors

func InvalidArgument(param, details string) *AppError {
	return NewAppError(ErrCodeInvalidArgument, KindValidation, "Missing or malformed argument", fmt.Sprintf("Parameter: %s%s", param, suffix(details)), nil)
}

func InvalidScore(score, min, max int) *AppError {
	return NewAppError(ErrCodeInvalidScore, KindValidation, "Score out of range", fmt.Sprintf("Score %d is not within [%d, %d]", score, min, max), nil)
}

func InvalidOutcome(outcome string) *AppError {
	return NewAppError(ErrCodeInvalidOutcome, KindValidation, "Invalid decision outcome", fmt.Sprintf("Outcome: %s", outcome), nil)
}

func EmptyField(field string) *AppError {
	return NewAppError(ErrCodeEmptyField, KindValidation, "Required field is empty", fmt.Sprintf("Field: %s", field), nil)
}

func SelfRating(userID string) *AppError {
	return NewAppError(ErrCodeSelfRating, KindValidation, "You cannot rate yourself", fmt.Sprintf("User ID: %s", userID), nil)
}

func UnknownJob(job string) *AppError {
	return NewAppError(ErrCodeUnknownJob, KindValidation, "Unknown job", fmt.Sprintf("Job: %s", job), nil)
}

// State conflict errors

func DuplicateApplication(userID string) *AppError {
	return NewAppError(ErrCodeDuplicateApplication, KindStateConflict, "Application already pending", fmt.Sprintf("User ID: %s", userID), nil).
		withHint("Wait for staff to review your current application.")
}

func NoApplication(userID string) *AppError {
	return NewAppError(ErrCodeNoApplication, KindStateConflict, "No pending application", fmt.Sprintf("User ID: %s", userID), nil).
		withHint("The user has to submit an application first.")
}

func WarningNotFound(userID string, id int) *AppError {
	return NewAppError(ErrCodeWarningNotFound, KindStateConflict, "Warning not found", fmt.Sprintf("User ID: %s, Warning ID: %d", userID, id), nil).
		withHint("List the user's warnings to see valid IDs.")
}

func DuplicateRater(staffID, raterID, retryIn string) *AppError {
	return NewAppError(ErrCodeDuplicateRater, KindStateConflict, "Already rated recently", fmt.Sprintf("Staff ID: %s, Rater ID: %s", staffID, raterID), nil).
		withHint(fmt.Sprintf("You can rate this staff member again in %s.", retryIn))
}

func DuplicateJobApplication(userID, job string) *AppError {
	return NewAppError(ErrCodeDuplicateJobApplication, KindStateConflict, "Job application already pending", fmt.Sprintf("User ID: %s, Job: %s", userID, job), nil).
		withHint("Wait for staff to review your current application for this job.")
}

func JobApplicationNotFound(id int64) *AppError {
	return NewAppError(ErrCodeJobApplicationNotFound, KindStateConflict, "Job application not found", fmt.Sprintf("ID: %d", id), nil).
		withHint("List pending job applications to see valid IDs.")
}

// Permission and routing errors

func PermissionDenied(command string) *AppError {
	return NewAppError(ErrCodePermissionDenied, KindPermissionDenied, "Permission denied", fmt.Sprintf("Command: %s", command), nil)
}

func UnknownCommand(name string) *AppError {
	return NewAppError(ErrCodeUnknownCommand, KindUnknownCommand, "Command not recognized", fmt.Sprintf("Command: %s", name), nil)
}

// Store errors

func StoreIO(collection, operation string, cause error) *AppError {
	return NewAppError(ErrCodeStoreIO, KindStoreIO, "Store I/O failure", fmt.Sprintf("Collection: %s, Operation: %s", collection, operation), cause)
}

func StoreCorrupt(collection string, cause error) *AppError {
	return NewAppError(ErrCodeStoreCorrupt, KindStoreCorrupt, "Stored collection is corrupt", fmt.Sprintf("Collection: %s", collection), cause)
}

// Server errors

func Internal(details string, cause error) *AppError {
	return NewAppError(ErrCodeInternal, KindInternal, "Internal error", details, cause)
}

// KindOf returns the kind of the first AppError in err's chain, or
// KindInternal for anything else.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func suffix(details string) string {
	if details == "" {
		return ""
	}
	return ", " + details
}
