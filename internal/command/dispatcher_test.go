package command

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/logger"
	"github.com/purochile/pcbot/internal/ports"
)

// MockCapabilityChecker is a mock implementation of ports.CapabilityChecker
type MockCapabilityChecker struct {
	mock.Mock
}

func (m *MockCapabilityChecker) IsStaff(ctx context.Context, caller ports.Identity) (bool, error) {
	args := m.Called(ctx, caller)
	return args.Bool(0), args.Error(1)
}

func newTestDispatcher(checker ports.CapabilityChecker) *Dispatcher {
	return NewDispatcher("pc!", checker, logger.NewNop())
}

func echoCommand(staff bool) Command {
	return Command{
		Name:          "echo",
		Aliases:       []string{"eco"},
		Params:        []Param{{Name: "text", Kind: ParamRest}},
		RequiresStaff: staff,
		Handler: func(_ context.Context, req Request) (Response, error) {
			return info("echo", req.Args.String("text")), nil
		},
	}
}

func TestDispatcher_AliasesAreCaseInsensitive(t *testing.T) {
	d := newTestDispatcher(nil)
	require.NoError(t, d.Register(echoCommand(false)))

	for _, name := range []string{"echo", "ECHO", "Eco"} {
		resp, err := d.Dispatch(context.Background(), name, []string{"hola", "mundo"}, ports.Identity{UserID: "1"})
		require.NoError(t, err)
		assert.Equal(t, "hola mundo", resp.Body)
	}
}

func TestDispatcher_RegisterRejectsDuplicates(t *testing.T) {
	d := newTestDispatcher(nil)
	require.NoError(t, d.Register(echoCommand(false)))

	clash := echoCommand(false)
	clash.Name = "other"
	clash.Aliases = []string{"ECO"}
	assert.Error(t, d.Register(clash))

	_, ok := d.Lookup("other")
	assert.False(t, ok)
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d := newTestDispatcher(nil)

	_, err := d.Dispatch(context.Background(), "nope", nil, ports.Identity{})

	assert.True(t, errors.Is(err, domain.ErrUnknownCommand))
}

func TestDispatcher_StaffGate(t *testing.T) {
	checker := new(MockCapabilityChecker)
	staff := ports.Identity{UserID: "staff"}
	member := ports.Identity{UserID: "member"}
	checker.On("IsStaff", mock.Anything, staff).Return(true, nil)
	checker.On("IsStaff", mock.Anything, member).Return(false, nil)

	d := newTestDispatcher(checker)
	called := 0
	cmd := echoCommand(true)
	cmd.Handler = func(context.Context, Request) (Response, error) {
		called++
		return Response{}, nil
	}
	require.NoError(t, d.Register(cmd))

	_, err := d.Dispatch(context.Background(), "echo", []string{"x"}, member)
	assert.True(t, errors.Is(err, domain.ErrPermissionDenied))
	assert.Zero(t, called)

	_, err = d.Dispatch(context.Background(), "echo", []string{"x"}, staff)
	assert.NoError(t, err)
	assert.Equal(t, 1, called)
	checker.AssertExpectations(t)
}

func TestDispatcher_PermissionCheckedBeforeArguments(t *testing.T) {
	checker := new(MockCapabilityChecker)
	checker.On("IsStaff", mock.Anything, mock.Anything).Return(false, nil)
	d := newTestDispatcher(checker)
	require.NoError(t, d.Register(echoCommand(true)))

	_, err := d.Dispatch(context.Background(), "echo", nil, ports.Identity{UserID: "member"})

	assert.True(t, errors.Is(err, domain.ErrPermissionDenied))
}

func TestDispatcher_HandleMapsErrors(t *testing.T) {
	checker := new(MockCapabilityChecker)
	checker.On("IsStaff", mock.Anything, mock.Anything).Return(false, nil)
	d := newTestDispatcher(checker)

	failing := func(err error) HandlerFunc {
		return func(context.Context, Request) (Response, error) { return Response{}, err }
	}
	require.NoError(t, d.Register(Command{Name: "conflict", Handler: failing(domain.DuplicateApplication("1"))}))
	require.NoError(t, d.Register(Command{Name: "store", Handler: failing(domain.StoreIO("ratings", "read", errors.New("disk")))}))
	require.NoError(t, d.Register(Command{Name: "plain", Handler: failing(errors.New("boom"))}))
	require.NoError(t, d.Register(Command{Name: "wrapped", Handler: failing(fmt.Errorf("rating failed: %w", domain.SelfRating("1")))}))
	require.NoError(t, d.Register(Command{Name: "secret", RequiresStaff: true, Handler: failing(nil)}))
	require.NoError(t, d.Register(echoCommand(false)))

	ctx := context.Background()
	caller := ports.Identity{UserID: "1"}

	resp := d.Handle(ctx, "conflict", nil, caller)
	assert.Equal(t, SeverityWarning, resp.Severity)
	assert.Contains(t, resp.Body, "Wait for staff")

	resp = d.Handle(ctx, "store", nil, caller)
	assert.Equal(t, SeverityError, resp.Severity)
	assert.NotContains(t, resp.Body, "disk")

	resp = d.Handle(ctx, "plain", nil, caller)
	assert.Equal(t, failure(), resp)

	resp = d.Handle(ctx, "wrapped", nil, caller)
	assert.Equal(t, "❌ You cannot rate yourself", resp.Title)
	assert.Empty(t, resp.Fields)

	resp = d.Handle(ctx, "secret", nil, caller)
	assert.Equal(t, "❌ Permission denied", resp.Title)

	resp = d.Handle(ctx, "missing", nil, caller)
	assert.Contains(t, resp.Body, "pc!help")

	resp = d.Handle(ctx, "echo", nil, caller)
	assert.Equal(t, SeverityError, resp.Severity)
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "`pc!echo <text...>`", resp.Fields[0].Value)
}

func TestDispatcher_HandleRecoversPanics(t *testing.T) {
	d := newTestDispatcher(nil)
	require.NoError(t, d.Register(Command{Name: "crash", Handler: func(context.Context, Request) (Response, error) {
		panic("nil map")
	}}))
	require.NoError(t, d.Register(echoCommand(false)))

	var resp Response
	assert.NotPanics(t, func() {
		resp = d.Handle(context.Background(), "crash", nil, ports.Identity{})
	})
	assert.Equal(t, failure(), resp)

	resp = d.Handle(context.Background(), "echo", []string{"still alive"}, ports.Identity{})
	assert.Equal(t, "still alive", resp.Body)
}

func TestDispatcher_CheckerFailureIsGeneric(t *testing.T) {
	checker := new(MockCapabilityChecker)
	checker.On("IsStaff", mock.Anything, mock.Anything).Return(false, errors.New("guild unavailable"))
	d := newTestDispatcher(checker)
	require.NoError(t, d.Register(echoCommand(true)))

	resp := d.Handle(context.Background(), "echo", []string{"x"}, ports.Identity{UserID: "1"})

	assert.Equal(t, failure(), resp)
}

func TestDispatcher_HandleMessage(t *testing.T) {
	d := newTestDispatcher(nil)
	require.NoError(t, d.Register(echoCommand(false)))

	resp, ok := d.HandleMessage(context.Background(), `pc!eco "quoted text"`, ports.Identity{})
	assert.True(t, ok)
	assert.Equal(t, "quoted text", resp.Body)

	_, ok = d.HandleMessage(context.Background(), "just chatting", ports.Identity{})
	assert.False(t, ok)
}
