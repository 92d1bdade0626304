package domain

import (
	"strings"
	"time"
)

// ApplicationStatus represents the status of a whitelist application
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusDenied   ApplicationStatus = "denied"
	ApplicationStatusReset    ApplicationStatus = "reset"
)

// WhitelistQuestions is the questionnaire shown by the submit command. Answers
// are paired with these questions in order.
var WhitelistQuestions = []string{
	"What is your character's full name?",
	"How old is your character and where are they from?",
	"Describe your character's backstory.",
	"What does metagaming mean?",
	"What does powergaming mean?",
	"How much roleplay experience do you have?",
}

// QA represents one answered questionnaire entry
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Application represents a user's whitelist application
type Application struct {
	UserID    string            `json:"user_id"`
	Status    ApplicationStatus `json:"status"`
	Answers   []QA              `json:"answers"`
	CreatedAt time.Time         `json:"created_at"`
	DecidedBy *string           `json:"decided_by,omitempty"`
	DecidedAt *time.Time        `json:"decided_at,omitempty"`
}

// NewApplication creates a pending application. Each answer must be non-blank.
func NewApplication(userID string, answers []QA, now time.Time) (*Application, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, EmptyField("user_id")
	}
	if len(answers) == 0 {
		return nil, EmptyField("answers")
	}
	for _, qa := range answers {
		if strings.TrimSpace(qa.Answer) == "" {
			return nil, EmptyField("answer: " + qa.Question)
		}
	}
	return &Application{
		UserID:    userID,
		Status:    ApplicationStatusPending,
		Answers:   answers,
		CreatedAt: now,
	}, nil
}

// PairAnswers zips answers with the questionnaire. Extra answers are appended
// to the last question so nothing the user typed is lost.
func PairAnswers(answers []string) []QA {
	var pairs []QA
	for i, answer := range answers {
		answer = strings.TrimSpace(answer)
		if i >= len(WhitelistQuestions) {
			last := &pairs[len(pairs)-1]
			last.Answer = strings.TrimSpace(last.Answer + " | " + answer)
			continue
		}
		pairs = append(pairs, QA{Question: WhitelistQuestions[i], Answer: answer})
	}
	return pairs
}

// IsPending reports whether the application awaits a decision
func (a *Application) IsPending() bool {
	return a.Status == ApplicationStatusPending
}

// Decide records a staff decision on a pending application
func (a *Application) Decide(outcome ApplicationStatus, deciderID string, now time.Time) error {
	if outcome != ApplicationStatusApproved && outcome != ApplicationStatusDenied {
		return InvalidOutcome(string(outcome))
	}
	if !a.IsPending() {
		return NoApplication(a.UserID)
	}
	a.Status = outcome
	a.DecidedBy = &deciderID
	a.DecidedAt = &now
	return nil
}

// Reset clears the application back to a fresh, not-submitted state
func (a *Application) Reset() {
	a.Status = ApplicationStatusReset
	a.Answers = nil
	a.DecidedBy = nil
	a.DecidedAt = nil
}

// ParseApplicationOutcome maps command input to a decision outcome
func ParseApplicationOutcome(s string) (ApplicationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve", "approved", "aprobar", "aprobado", "accept":
		return ApplicationStatusApproved, nil
	case "deny", "denied", "rechazar", "rechazado", "reject":
		return ApplicationStatusDenied, nil
	default:
		return "", InvalidOutcome(s)
	}
}
