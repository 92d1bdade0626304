package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/purochile/pcbot/internal/command"
	"github.com/purochile/pcbot/internal/domain"
	"github.com/purochile/pcbot/internal/logger"
)

const memberPermissions = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory

// ChannelRequest asks for a private channel visible to one user and staff
type ChannelRequest struct {
	RequestID string
	GuildID   string
	UserID    string
	Name      string
	Topic     string
}

// ChannelManager creates private channels visible to one member and staff
type ChannelManager struct {
	session      Session
	categoryID   string
	staffRoleIDs []string
	log          logger.Logger
	now          func() time.Time
}

// NewChannelManager creates a channel manager. Channels are created under
// categoryID when it is set.
func NewChannelManager(session Session, categoryID string, staffRoleIDs []string, log logger.Logger) *ChannelManager {
	return &ChannelManager{
		session:      session,
		categoryID:   categoryID,
		staffRoleIDs: staffRoleIDs,
		log:          log.WithFields(map[string]interface{}{"component": "discord.channels"}),
		now:          time.Now,
	}
}

// CreatePrivateChannel creates the channel and returns its id. The @everyone
// role (whose id equals the guild id) is denied visibility.
func (m *ChannelManager) CreatePrivateChannel(ctx context.Context, req ChannelRequest) (string, error) {
	if req.GuildID == "" || req.UserID == "" {
		return "", domain.InvalidArgument("channel_request", "guild and user are required")
	}

	overwrites := []*discordgo.PermissionOverwrite{
		{ID: req.GuildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{ID: req.UserID, Type: discordgo.PermissionOverwriteTypeMember, Allow: memberPermissions},
	}
	for _, roleID := range m.staffRoleIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: memberPermissions,
		})
	}

	channel, err := m.session.GuildChannelCreateComplex(req.GuildID, discordgo.GuildChannelCreateData{
		Name:                 req.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                req.Topic,
		ParentID:             m.categoryID,
		PermissionOverwrites: overwrites,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to create channel %s: %w", req.Name, err)
	}

	m.log.Info(ctx, "private channel created", map[string]interface{}{
		"request_id": req.RequestID,
		"channel_id": channel.ID,
		"user_id":    req.UserID,
	})
	return channel.ID, nil
}

// HandleApproved creates the whitelist channel of an approved applicant and
// greets them in it
func (m *ChannelManager) HandleApproved(ctx context.Context, event domain.Event) error {
	req := ChannelRequest{
		RequestID: uuid.NewString(),
		GuildID:   event.GuildID,
		UserID:    event.SubjectID,
		Name:      channelName("whitelist", event.SubjectID),
		Topic:     "Whitelist channel for " + command.Mention(event.SubjectID),
	}
	channelID, err := m.CreatePrivateChannel(ctx, req)
	if err != nil {
		return err
	}

	welcome := command.Response{
		Title:    "🎉 Welcome to the whitelist",
		Body:     fmt.Sprintf("%s your application was approved. Staff will continue with you here.", command.Mention(event.SubjectID)),
		Severity: command.SeveritySuccess,
	}
	if _, err := m.session.ChannelMessageSendEmbed(channelID, Embed(welcome, m.now()), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to greet in channel %s: %w", channelID, err)
	}
	return nil
}

func channelName(kind, userID string) string {
	return strings.ToLower(kind + "-" + userID)
}
