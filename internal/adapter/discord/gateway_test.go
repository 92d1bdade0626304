package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/purochile/pcbot/internal/command"
	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/logger"
	"github.com/purochile/pcbot/internal/ports"
)

// MockCommandHandler is a mock implementation of CommandHandler
type MockCommandHandler struct {
	mock.Mock
}

func (m *MockCommandHandler) HandleMessage(ctx context.Context, content string, caller ports.Identity) (command.Response, bool) {
	args := m.Called(ctx, content, caller)
	return args.Get(0).(command.Response), args.Bool(1)
}

// MockReactionRecorder is a mock implementation of ReactionRecorder
type MockReactionRecorder struct {
	mock.Mock
}

func (m *MockReactionRecorder) Record(ctx context.Context, entry domain.ReactionLogEntry) (*domain.ReactionLogEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReactionLogEntry), args.Error(1)
}

func message(authorID, content string, bot bool) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Username: "player", Bot: bot},
		Member:    &discordgo.Member{Roles: []string{"r-staff"}},
	}}
}

func TestGateway_StartRegistersHandlers(t *testing.T) {
	session := &fakeSession{}
	g := NewGateway(session, new(MockCommandHandler), new(MockReactionRecorder), GatewayConfig{LogReactions: true}, logger.NewNop())

	require.NoError(t, g.Start())
	assert.True(t, session.opened)
	assert.Len(t, session.handlers, 4)

	require.NoError(t, g.Stop())
	assert.True(t, session.closed)
}

func TestGateway_StartWithoutReactionLog(t *testing.T) {
	session := &fakeSession{}
	g := NewGateway(session, new(MockCommandHandler), nil, GatewayConfig{LogReactions: true}, logger.NewNop())

	require.NoError(t, g.Start())
	assert.Len(t, session.handlers, 2)
}

func TestGateway_MessageSendsEmbed(t *testing.T) {
	session := &fakeSession{}
	commands := new(MockCommandHandler)
	expected := ports.Identity{UserID: "200", Username: "player", GuildID: "g1", ChannelID: "c1", RoleIDs: []string{"r-staff"}}
	commands.On("HandleMessage", mock.MatchedBy(func(ctx context.Context) bool {
		return logger.CorrelationID(ctx) == "m1"
	}), "pc!ping", expected).Return(command.Response{Title: "🏓 Pong!", Severity: command.SeveritySuccess}, true)

	g := NewGateway(session, commands, nil, GatewayConfig{}, logger.NewNop())
	g.onMessageCreate(nil, message("200", "pc!ping", false))

	require.Len(t, session.sent, 1)
	assert.Equal(t, "c1", session.sent[0].channelID)
	assert.Equal(t, "🏓 Pong!", session.sent[0].embed.Title)
	assert.Equal(t, ColorSuccess, session.sent[0].embed.Color)
	commands.AssertExpectations(t)
}

func TestGateway_IgnoresBotsAndChatter(t *testing.T) {
	session := &fakeSession{}
	commands := new(MockCommandHandler)
	commands.On("HandleMessage", mock.Anything, "hello", mock.Anything).Return(command.Response{}, false)

	g := NewGateway(session, commands, nil, GatewayConfig{}, logger.NewNop())
	g.onMessageCreate(nil, message("999", "pc!ping", true))
	g.onMessageCreate(nil, message("200", "hello", false))
	g.onMessageCreate(nil, &discordgo.MessageCreate{})

	assert.Empty(t, session.sent)
	commands.AssertNumberOfCalls(t, "HandleMessage", 1)
}

func TestGateway_SendFailureIsLogged(t *testing.T) {
	session := &fakeSession{sendErr: errors.New("missing access")}
	commands := new(MockCommandHandler)
	commands.On("HandleMessage", mock.Anything, mock.Anything, mock.Anything).Return(command.Response{Title: "x"}, true)

	g := NewGateway(session, commands, nil, GatewayConfig{}, logger.NewNop())

	assert.NotPanics(t, func() { g.onMessageCreate(nil, message("200", "pc!ping", false)) })
}

func TestGateway_RecordsReactions(t *testing.T) {
	recorder := new(MockReactionRecorder)
	recorder.On("Record", mock.Anything, domain.ReactionLogEntry{
		UserID: "200", Action: domain.ReactionAdded, Emoji: "👍", MessageID: "m9", ChannelID: "c1", GuildID: "g1",
	}).Return(&domain.ReactionLogEntry{ID: 1}, nil).Once()
	recorder.On("Record", mock.Anything, mock.MatchedBy(func(e domain.ReactionLogEntry) bool {
		return e.Action == domain.ReactionRemoved && e.Emoji == "<:pepe:55>"
	})).Return(nil, errors.New("store down")).Once()

	g := NewGateway(&fakeSession{}, new(MockCommandHandler), recorder, GatewayConfig{LogReactions: true}, logger.NewNop())

	g.onReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: &discordgo.MessageReaction{
		UserID: "200", MessageID: "m9", ChannelID: "c1", GuildID: "g1", Emoji: discordgo.Emoji{Name: "👍"},
	}})
	g.onReactionRemove(nil, &discordgo.MessageReactionRemove{MessageReaction: &discordgo.MessageReaction{
		UserID: "200", MessageID: "m9", ChannelID: "c1", GuildID: "g1", Emoji: discordgo.Emoji{ID: "55", Name: "pepe"},
	}})

	recorder.AssertExpectations(t)
}
