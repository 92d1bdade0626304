package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/purochile/pcbot/internal/command"
	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/logger"
	"github.com/purochile/pcbot/internal/ports"
)

// CommandHandler handles one chat message
type CommandHandler interface {
	HandleMessage(ctx context.Context, content string, caller ports.Identity) (command.Response, bool)
}

// ReactionRecorder stores reaction activity
type ReactionRecorder interface {
	Record(ctx context.Context, entry domain.ReactionLogEntry) (*domain.ReactionLogEntry, error)
}

// GatewayConfig configures the gateway
type GatewayConfig struct {
	LogReactions   bool
	CommandTimeout time.Duration
}

// Gateway turns Discord events into command invocations and reaction log
// entries
type Gateway struct {
	session   Session
	commands  CommandHandler
	reactions ReactionRecorder
	config    GatewayConfig
	log       logger.Logger
	now       func() time.Time
}

// NewGateway creates a gateway. reactions may be nil when reaction logging is off.
func NewGateway(session Session, commands CommandHandler, reactions ReactionRecorder, config GatewayConfig, log logger.Logger) *Gateway {
	if config.CommandTimeout <= 0 {
		config.CommandTimeout = 30 * time.Second
	}
	return &Gateway{
		session:   session,
		commands:  commands,
		reactions: reactions,
		config:    config,
		log:       log.WithFields(map[string]interface{}{"component": "discord.gateway"}),
		now:       time.Now,
	}
}

// Start registers the event handlers and opens the websocket
func (g *Gateway) Start() error {
	g.session.AddHandler(g.onReady)
	g.session.AddHandler(g.onMessageCreate)
	if g.config.LogReactions && g.reactions != nil {
		g.session.AddHandler(g.onReactionAdd)
		g.session.AddHandler(g.onReactionRemove)
	}
	return g.session.Open()
}

// Stop closes the websocket
func (g *Gateway) Stop() error {
	return g.session.Close()
}

func (g *Gateway) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	fields := map[string]interface{}{"guilds": len(r.Guilds)}
	if r.User != nil {
		fields["bot_user"] = r.User.Username
		fields["bot_id"] = r.User.ID
	}
	g.log.Info(context.Background(), "gateway ready", fields)
}

func (g *Gateway) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil || m.Author.Bot {
		return
	}

	ctx, cancel := context.WithTimeout(logger.WithCorrelationID(context.Background(), m.ID), g.config.CommandTimeout)
	defer cancel()

	caller := ports.Identity{
		UserID:    m.Author.ID,
		Username:  m.Author.Username,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
	}
	if m.Member != nil {
		caller.RoleIDs = m.Member.Roles
	}

	resp, ok := g.commands.HandleMessage(ctx, m.Content, caller)
	if !ok {
		return
	}
	if _, err := g.session.ChannelMessageSendEmbed(m.ChannelID, Embed(resp, g.now()), discordgo.WithContext(ctx)); err != nil {
		g.log.Error(ctx, "failed to send response", err, map[string]interface{}{
			"channel_id": m.ChannelID,
			"user_id":    m.Author.ID,
		})
	}
}

func (g *Gateway) onReactionAdd(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.MessageReaction == nil {
		return
	}
	g.recordReaction(r.MessageReaction, domain.ReactionAdded)
}

func (g *Gateway) onReactionRemove(_ *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.MessageReaction == nil {
		return
	}
	g.recordReaction(r.MessageReaction, domain.ReactionRemoved)
}

func (g *Gateway) recordReaction(r *discordgo.MessageReaction, action domain.ReactionAction) {
	ctx, cancel := context.WithTimeout(logger.WithCorrelationID(context.Background(), r.MessageID), g.config.CommandTimeout)
	defer cancel()

	_, err := g.reactions.Record(ctx, domain.ReactionLogEntry{
		UserID:    r.UserID,
		Action:    action,
		Emoji:     r.Emoji.MessageFormat(),
		MessageID: r.MessageID,
		ChannelID: r.ChannelID,
		GuildID:   r.GuildID,
	})
	if err != nil {
		g.log.Error(ctx, "failed to record reaction", err, map[string]interface{}{
			"message_id": r.MessageID,
			"user_id":    r.UserID,
			"action":     string(action),
		})
	}
}
