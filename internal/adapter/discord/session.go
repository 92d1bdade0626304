// Package discord connects the bot to the Discord gateway through discordgo.
package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Session is the part of *discordgo.Session the adapters use
type Session interface {
	AddHandler(handler interface{}) func()
	Open() error
	Close() error
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	HeartbeatLatency() time.Duration
}

// Intents requested on identify: prefix commands need message content,
// the reaction log needs reactions, role checks need members.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsMessageContent

// NewSession creates a bot session for token. The connection is opened by
// Gateway.Start.
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = Intents
	return s, nil
}

var _ Session = (*discordgo.Session)(nil)
