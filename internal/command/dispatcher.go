// Package command routes prefixed chat commands to the use cases.
package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/logger"
	"github.com/purochile/pcbot/internal/ports"
)

// Request is one validated command invocation
type Request struct {
	Command string
	Caller  ports.Identity
	Args    Args
}

// HandlerFunc executes a command
type HandlerFunc func(ctx context.Context, req Request) (Response, error)

// Command describes a registered command
type Command struct {
	Name          string
	Aliases       []string
	Category      string
	Summary       string
	Params        []Param
	RequiresStaff bool
	Handler       HandlerFunc
}

// Usage renders the command line a user is expected to type
func (c Command) Usage(prefix string) string {
	parts := []string{prefix + c.Name}
	for _, p := range c.Params {
		ph := p.Kind.placeholder(p.Name)
		if p.Optional {
			ph = "[" + ph + "]"
		} else {
			ph = "<" + ph + ">"
		}
		parts = append(parts, ph)
	}
	return strings.Join(parts, " ")
}

// Dispatcher maps command names and aliases to handlers and enforces the
// staff gate before binding arguments
type Dispatcher struct {
	prefix   string
	checker  ports.CapabilityChecker
	log      logger.Logger
	commands []*Command
	index    map[string]*Command
}

// NewDispatcher creates a dispatcher for commands typed with prefix
func NewDispatcher(prefix string, checker ports.CapabilityChecker, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		prefix:  prefix,
		checker: checker,
		log:     log.WithFields(map[string]interface{}{"component": "command.dispatcher"}),
		index:   make(map[string]*Command),
	}
}

// Prefix returns the command prefix
func (d *Dispatcher) Prefix() string {
	return d.prefix
}

// Register adds a command. Names and aliases are case-insensitive and must be
// unique across the registry.
func (d *Dispatcher) Register(cmd Command) error {
	if cmd.Name == "" || cmd.Handler == nil {
		return fmt.Errorf("command requires a name and a handler")
	}
	c := &cmd
	keys := append([]string{cmd.Name}, cmd.Aliases...)
	for _, key := range keys {
		if _, exists := d.index[strings.ToLower(key)]; exists {
			return fmt.Errorf("command %q is already registered", key)
		}
	}
	for _, key := range keys {
		d.index[strings.ToLower(key)] = c
	}
	d.commands = append(d.commands, c)
	return nil
}

// Lookup finds a command by name or alias
func (d *Dispatcher) Lookup(name string) (*Command, bool) {
	c, ok := d.index[strings.ToLower(name)]
	return c, ok
}

// Commands returns the registered commands ordered by category and name
func (d *Dispatcher) Commands() []Command {
	out := make([]Command, 0, len(d.commands))
	for _, c := range d.commands {
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Dispatch looks up, authorizes, binds and runs one command
func (d *Dispatcher) Dispatch(ctx context.Context, name string, raw []string, caller ports.Identity) (Response, error) {
	cmd, ok := d.Lookup(name)
	if !ok {
		return Response{}, domain.UnknownCommand(name)
	}

	if cmd.RequiresStaff {
		staff, err := d.checker.IsStaff(ctx, caller)
		if err != nil {
			return Response{}, domain.Internal("capability check failed", err)
		}
		if !staff {
			return Response{}, domain.PermissionDenied(cmd.Name)
		}
	}

	args, err := bind(cmd.Params, raw)
	if err != nil {
		return Response{}, err
	}

	return cmd.Handler(ctx, Request{Command: cmd.Name, Caller: caller, Args: args})
}

// Handle runs a command for the event loop. It never fails: every error and
// panic becomes a user-facing response.
func (d *Dispatcher) Handle(ctx context.Context, name string, raw []string, caller ports.Identity) (resp Response) {
	fields := map[string]interface{}{
		"command": name,
		"user_id": caller.UserID,
		"guild":   caller.GuildID,
		"channel": caller.ChannelID,
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.Error(ctx, "command panicked", fmt.Errorf("panic: %v", r), fields)
			resp = failure()
		}
	}()

	resp, err := d.Dispatch(ctx, name, raw, caller)
	if err == nil {
		d.log.Debug(ctx, "command handled", fields)
		return resp
	}
	return d.errorResponse(ctx, name, err, fields)
}

// HandleMessage parses a raw message and handles it. ok is false when the
// message is not a command.
func (d *Dispatcher) HandleMessage(ctx context.Context, content string, caller ports.Identity) (Response, bool) {
	name, args, ok := Parse(content, d.prefix)
	if !ok {
		return Response{}, false
	}
	return d.Handle(ctx, name, args, caller), true
}

func (d *Dispatcher) errorResponse(ctx context.Context, name string, err error, fields map[string]interface{}) Response {
	var appErr *domain.AppError
	errors.As(err, &appErr)

	switch domain.KindOf(err) {
	case domain.KindValidation:
		resp := Response{Title: "❌ " + appErr.Message, Body: appErr.Details, Severity: SeverityError}
		if cmd, ok := d.Lookup(name); ok && appErr.Code == domain.ErrCodeInvalidArgument {
			resp = resp.AddField("Usage", "`"+cmd.Usage(d.prefix)+"`", false)
		}
		return resp
	case domain.KindStateConflict:
		return Response{Title: "⚠️ " + appErr.Message, Body: appErr.Hint, Severity: SeverityWarning}
	case domain.KindPermissionDenied:
		return Response{Title: "❌ Permission denied", Body: "You do not have permission to use this command.", Severity: SeverityError}
	case domain.KindUnknownCommand:
		return Response{
			Title:    "❌ Command not found",
			Body:     fmt.Sprintf("That command does not exist. Use `%shelp` to see the available commands.", d.prefix),
			Severity: SeverityError,
		}
	default:
		if appErr != nil {
			fields["error_code"] = string(appErr.Code)
		}
		d.log.Error(ctx, "command failed", err, fields)
		return failure()
	}
}

func failure() Response {
	return Response{
		Title:    "❌ Error",
		Body:     "Something went wrong while running the command. Please try again later.",
		Severity: SeverityError,
	}
}
