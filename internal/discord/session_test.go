package discord

import (
	"testing"
	"time"

	"cxbot/internal/discord/discordtest"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateMessageSend(t *testing.T) {
	ms := CreateMessageSend(MessageData{
		Content: "hello",
		Embed: &EmbedData{
			Title:     "Title",
			Color:     "0xE74C3C",
			Footer:    Footer{Text: "footer"},
			Thumbnail: "https://example.com/t.png",
		},
	})

	assert.Equal(t, "hello", ms.Content)
	require.Len(t, ms.Embeds, 1)
	embed := ms.Embeds[0]
	assert.Equal(t, "Title", embed.Title)
	assert.Equal(t, 0xE74C3C, embed.Color)
	assert.Equal(t, "footer", embed.Footer.Text)
	assert.Equal(t, "https://example.com/t.png", embed.Thumbnail.URL)
	assert.Nil(t, embed.Image)
}

func TestCreateMessageSend_NoEmbed(t *testing.T) {
	ms := CreateMessageSend(MessageData{Content: "plain"})
	assert.Empty(t, ms.Embeds)
}

func TestParseHexColor(t *testing.T) {
	assert.Equal(t, 0x00FF00, parseHexColor("0x00FF00"))
	assert.Equal(t, 0xFFFFFF, parseHexColor("green"))
}

func TestSendTimed(t *testing.T) {
	session := discordtest.NewSession()
	sent, err := SendTimed(session, zap.NewNop().Sugar(), "chan", &discordgo.MessageSend{Content: "bye"}, 10*time.Millisecond)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		ids := session.DeletedIDs()
		return len(ids) == 1 && ids[0] == sent.ID
	}, time.Second, 5*time.Millisecond)
}

func TestMissingPermissions(t *testing.T) {
	testCases := []struct {
		name     string
		required int64
		has      int64
		expected []string
	}{
		{"none required", 0, 0, nil},
		{"satisfied", discordgo.PermissionManageServer, discordgo.PermissionManageServer, nil},
		{"administrator", discordgo.PermissionManageServer | discordgo.PermissionBanMembers, discordgo.PermissionAdministrator, nil},
		{"missing", discordgo.PermissionManageServer | discordgo.PermissionBanMembers, discordgo.PermissionBanMembers, []string{"Manage Server"}},
		{"sorted", discordgo.PermissionManageServer | discordgo.PermissionBanMembers, 0, []string{"Ban Members", "Manage Server"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MissingPermissions(tc.required, tc.has))
		})
	}
}
