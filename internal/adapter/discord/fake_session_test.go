package discord

import (
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

type sentEmbed struct {
	channelID string
	embed     *discordgo.MessageEmbed
}

// fakeSession records what the adapters ask Discord to do
type fakeSession struct {
	mu       sync.Mutex
	handlers []interface{}
	opened   bool
	closed   bool
	sent     []sentEmbed
	created  []discordgo.GuildChannelCreateData
	roles    []*discordgo.Role
	rolesErr error
	sendErr  error
}

func (f *fakeSession) AddHandler(handler interface{}) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, handler)
	return func() {}
}

func (f *fakeSession) Open() error {
	f.opened = true
	return nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func (f *fakeSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, sentEmbed{channelID: channelID, embed: embed})
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (f *fakeSession) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if guildID == "" {
		return nil, errors.New("missing guild")
	}
	f.created = append(f.created, data)
	return &discordgo.Channel{ID: "chan-" + data.Name, GuildID: guildID, Name: data.Name}, nil
}

func (f *fakeSession) GuildRoles(string, ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return f.roles, f.rolesErr
}

func (f *fakeSession) HeartbeatLatency() time.Duration {
	return 25 * time.Millisecond
}
