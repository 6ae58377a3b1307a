// Package discordtest provides an in-memory discord.Session for tests.
package discordtest

import (
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

type SentMessage struct {
	ChannelID string
	Message   *discordgo.MessageSend
}

type Session struct {
	mu sync.Mutex

	Sent     []SentMessage
	Deleted  []string
	Status   string
	Handlers []interface{}

	// History is returned by ChannelMessages, newest first.
	History map[string][]*discordgo.Message

	// Permissions maps user IDs to the permissions they hold in every channel.
	Permissions    map[string]int64
	PermissionsErr error
	SendErr        error
	Latency        time.Duration

	nextID int
}

func NewSession() *Session {
	return &Session{
		Permissions: map[string]int64{},
		History:     map[string][]*discordgo.Message{},
	}
}

func (s *Session) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{Content: content}, options...)
}

func (s *Session) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SendErr != nil {
		return nil, s.SendErr
	}
	s.nextID++
	s.Sent = append(s.Sent, SentMessage{ChannelID: channelID, Message: data})
	return &discordgo.Message{
		ID:        strconv.Itoa(s.nextID),
		ChannelID: channelID,
		Content:   data.Content,
		Embeds:    data.Embeds,
	}, nil
}

func (s *Session) ChannelMessageDelete(_, messageID string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, messageID)
	return nil
}

func (s *Session) ChannelMessages(channelID string, limit int, beforeID, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*discordgo.Message
	skipping := beforeID != ""
	for _, m := range s.History[channelID] {
		if skipping {
			skipping = m.ID != beforeID
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Session) ChannelMessagesBulkDelete(_ string, messages []string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, messages...)
	return nil
}

func (s *Session) UserChannelPermissions(userID, _ string, _ ...discordgo.RequestOption) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PermissionsErr != nil {
		return 0, s.PermissionsErr
	}
	return s.Permissions[userID], nil
}

func (s *Session) UpdateGameStatus(_ int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = name
	return nil
}

func (s *Session) HeartbeatLatency() time.Duration {
	return s.Latency
}

func (s *Session) AddHandler(handler interface{}) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Handlers = append(s.Handlers, handler)
	return func() {}
}

// Messages returns a copy of everything sent so far.
func (s *Session) Messages() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentMessage(nil), s.Sent...)
}

func (s *Session) DeletedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Deleted...)
}

// Message builds an incoming message for handler tests. An empty guildID
// makes it a direct message.
func Message(authorID, guildID, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "m-" + authorID,
		ChannelID: "c-" + guildID,
		GuildID:   guildID,
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Username: "user" + authorID},
	}
}
