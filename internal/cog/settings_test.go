package cog

import (
	"testing"

	"cxbot/internal/command"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsCog_SetPrefix(t *testing.T) {
	h := newHarness(t, map[string]string{"settings.json5": `{Enabled: true, Max_prefix_size: 4}`})
	h.load(t)
	h.session.Permissions["2"] = discordgo.PermissionManageServer

	h.say("2", `cx setprefix "$ "`)
	assert.Equal(t, "✅ Prefix set to `$ `.", h.lastContent(t))

	prefixes, err := h.env.Store.Prefixes()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"g": "$ "}, prefixes)

	h.say("2", "cx setprefix toolong")
	assert.Equal(t, "The prefix can be at most 4 characters.", h.lastContent(t))

	h.say("2", "cx resetprefix")
	assert.Equal(t, "✅ Prefix reset to `cx `.", h.lastContent(t))
	prefixes, err = h.env.Store.Prefixes()
	require.NoError(t, err)
	assert.Empty(t, prefixes)
}

func TestSettingsCog_RequiresManageServer(t *testing.T) {
	h := newHarness(t, map[string]string{"settings.json5": `{Enabled: true}`})
	h.load(t)

	h.say("3", "cx setprefix !")

	require.Len(t, h.errs, 1)
	var permErr *command.MissingPermissionsError
	assert.ErrorAs(t, h.errs[0], &permErr)
	assert.Empty(t, h.session.Messages())
}

func TestSettingsCog_ShowPrefix(t *testing.T) {
	h := newHarness(t, map[string]string{"settings.json5": `{Enabled: true}`})
	h.env.Prefixes = func(string, string) []string { return []string{"", "cx "} }
	h.load(t)

	h.say("2", "cx prefix")
	assert.Equal(t, "Prefixes: no prefix, `cx `", h.lastContent(t))
}

func TestSettingsCog_Purge(t *testing.T) {
	h := newHarness(t, map[string]string{"settings.json5": `{Enabled: true}`})
	h.load(t)
	h.session.Permissions["2"] = discordgo.PermissionManageMessages
	h.session.History["c-g"] = []*discordgo.Message{
		{ID: "m-2", Author: &discordgo.User{ID: "2"}},
		{ID: "x1", Author: &discordgo.User{ID: "5"}},
		{ID: "x2", Author: &discordgo.User{ID: "6"}},
		{ID: "x3", Author: &discordgo.User{ID: "5"}},
	}

	h.say("2", "cx purge 10 <@5>")

	require.Empty(t, h.errs)
	assert.Equal(t, []string{"x1", "x3"}, h.session.DeletedIDs())
	msgs := h.session.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "🧹 Deleted **2** messages.", msgs[0].Message.Embeds[0].Description)
}

func TestSettingsCog_PurgeInvalidCount(t *testing.T) {
	h := newHarness(t, map[string]string{"settings.json5": `{Enabled: true}`})
	h.load(t)
	h.session.Permissions["2"] = discordgo.PermissionAdministrator

	h.say("2", "cx purge 500")

	assert.Equal(t, "The count must be a number between 1 and 100.", h.lastContent(t))
	assert.Empty(t, h.session.DeletedIDs())
}

func TestSettingsCog_SetPrefixKeepsShellCharacters(t *testing.T) {
	h := newHarness(t, map[string]string{"settings.json5": `{Enabled: true}`})
	h.load(t)
	h.session.Permissions["2"] = discordgo.PermissionManageServer

	h.say("2", "cx setprefix '!;'")
	require.Empty(t, h.errs)

	prefixes, err := h.env.Store.Prefixes()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"g": "!;"}, prefixes)
}
