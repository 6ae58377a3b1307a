package prefix

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cxbot/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner = "1429162914543304794"
	guild = "900"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

func newResolver(t *testing.T, files map[string]string) (*Resolver, string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return &Resolver{
		Store:   store.New(dir),
		Default: "cx ",
		OwnerID: owner,
		Now:     func() time.Time { return now },
	}, dir
}

func TestResolve(t *testing.T) {
	testCases := []struct {
		name     string
		files    map[string]string
		author   string
		guild    string
		expected []string
	}{
		{
			name:     "no files in guild",
			author:   "1",
			guild:    guild,
			expected: []string{"cx "},
		},
		{
			name:     "no files owner gets no-prefix",
			author:   owner,
			guild:    guild,
			expected: []string{"", "cx "},
		},
		{
			name:     "malformed np file owner gets no-prefix in DM",
			files:    map[string]string{store.NoPrefixFile: `{`},
			author:   owner,
			expected: []string{"", "cx "},
		},
		{
			name:     "owner without np entry uses guild prefix",
			files:    map[string]string{store.NoPrefixFile: `{}`, store.PrefixesFile: `{"900": "!"}`},
			author:   owner,
			guild:    guild,
			expected: []string{"!"},
		},
		{
			name:     "lifetime privilege",
			files:    map[string]string{store.NoPrefixFile: `{"1": {"active": true, "expires_at": "lifetime"}}`},
			author:   "1",
			guild:    guild,
			expected: []string{"", "cx "},
		},
		{
			name:     "missing expiry means lifetime",
			files:    map[string]string{store.NoPrefixFile: `{"1": {"active": true}}`},
			author:   "1",
			expected: []string{"", "cx "},
		},
		{
			name: "inactive privilege ignores guild prefix",
			files: map[string]string{
				store.NoPrefixFile: `{"1": {"active": false, "expires_at": "lifetime"}}`,
				store.PrefixesFile: `{"900": "!"}`,
			},
			author:   "1",
			guild:    guild,
			expected: []string{"cx "},
		},
		{
			name:     "active absent is inactive",
			files:    map[string]string{store.NoPrefixFile: `{"1": {"expires_at": "lifetime"}}`},
			author:   "1",
			expected: []string{"cx "},
		},
		{
			name:     "unexpired privilege",
			files:    map[string]string{store.NoPrefixFile: `{"1": {"active": true, "expires_at": "2025-06-16T00:00:00.000000"}}`},
			author:   "1",
			guild:    guild,
			expected: []string{"", "cx "},
		},
		{
			name:     "unparseable expiry",
			files:    map[string]string{store.NoPrefixFile: `{"1": {"active": true, "expires_at": "next tuesday"}}`},
			author:   "1",
			guild:    guild,
			expected: []string{"cx "},
		},
		{
			name:     "empty expiry is unparseable",
			files:    map[string]string{store.NoPrefixFile: `{"1": {"active": true, "expires_at": ""}}`},
			author:   "1",
			guild:    guild,
			expected: []string{"cx "},
		},
		{
			name:     "null expiry is unparseable",
			files:    map[string]string{store.NoPrefixFile: `{"1": {"active": true, "expires_at": null}}`},
			author:   "1",
			guild:    guild,
			expected: []string{"cx "},
		},
		{
			name: "numeric expiry is unparseable",
			files: map[string]string{
				store.NoPrefixFile: `{"1": {"active": true, "expires_at": 1750000000}}`,
				store.PrefixesFile: `{"900": "!"}`,
			},
			author:   "1",
			guild:    guild,
			expected: []string{"cx "},
		},
		{
			name: "odd entry does not make the file malformed for the owner",
			files: map[string]string{
				store.NoPrefixFile: `{"1": {"active": true, "expires_at": 1750000000}}`,
				store.PrefixesFile: `{"900": "!"}`,
			},
			author:   owner,
			guild:    guild,
			expected: []string{"!"},
		},
		{
			name:     "truthy active",
			files:    map[string]string{store.NoPrefixFile: `{"1": {"active": 1, "expires_at": "lifetime"}}`},
			author:   "1",
			guild:    guild,
			expected: []string{"", "cx "},
		},
		{
			name:     "falsy active",
			files:    map[string]string{store.NoPrefixFile: `{"1": {"active": "", "expires_at": "lifetime"}}`},
			author:   "1",
			guild:    guild,
			expected: []string{"cx "},
		},
		{
			name: "another user's bad entry is isolated",
			files: map[string]string{
				store.NoPrefixFile: `{"1": {"active": true}, "2": {"active": [1], "expires_at": {"at": 5}}}`,
				store.PrefixesFile: `{"900": "!"}`,
			},
			author:   "1",
			guild:    guild,
			expected: []string{"", "cx "},
		},
		{
			name: "entry that is not an object",
			files: map[string]string{
				store.NoPrefixFile: `{"1": "yes"}`,
				store.PrefixesFile: `{"900": "!"}`,
			},
			author:   "1",
			guild:    guild,
			expected: []string{"cx "},
		},
		{
			name:     "np file that is not an object is malformed",
			files:    map[string]string{store.NoPrefixFile: `["1"]`, store.PrefixesFile: `{"900": "!"}`},
			author:   owner,
			guild:    guild,
			expected: []string{"", "cx "},
		},
		{
			name:     "guild prefix",
			files:    map[string]string{store.PrefixesFile: `{"900": "$ "}`},
			author:   "1",
			guild:    guild,
			expected: []string{"$ "},
		},
		{
			name:     "guild without custom prefix",
			files:    map[string]string{store.PrefixesFile: `{"901": "$ "}`},
			author:   "1",
			guild:    guild,
			expected: []string{"cx "},
		},
		{
			name:     "malformed prefixes file",
			files:    map[string]string{store.PrefixesFile: `"oops`},
			author:   "1",
			guild:    guild,
			expected: []string{"cx "},
		},
		{
			name:     "DM ignores guild prefixes",
			files:    map[string]string{store.PrefixesFile: `{"900": "$ "}`},
			author:   "1",
			expected: []string{"cx "},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newResolver(t, tc.files)
			assert.Equal(t, tc.expected, r.Resolve(tc.author, tc.guild))
		})
	}
}

func TestResolve_ExpiredPrivilegeIsPersisted(t *testing.T) {
	r, _ := newResolver(t, map[string]string{
		store.NoPrefixFile: `{
			"1": {"active": true, "expires_at": "2025-06-14T08:30:00"},
			"2": {"active": true, "expires_at": "lifetime"}
		}`,
	})

	assert.Equal(t, []string{"cx "}, r.Resolve("1", guild))

	users, err := r.Store.NoPrefixUsers()
	require.NoError(t, err)
	assert.False(t, users["1"].Active)
	assert.Equal(t, "2025-06-14T08:30:00", users["1"].ExpiresAt)
	assert.True(t, users["2"].Active)

	// Once deactivated the entry short-circuits without another write.
	assert.Equal(t, []string{"cx "}, r.Resolve("1", guild))
}

func TestResolve_ExpiryKeepsOtherFields(t *testing.T) {
	r, dir := newResolver(t, map[string]string{
		store.NoPrefixFile: `{
			"1": {"active": true, "expires_at": "2025-06-14T08:30:00", "granted_by": 1429162914543304794},
			"2": {"active": "yes", "expires_at": 42}
		}`,
	})

	assert.Equal(t, []string{"cx "}, r.Resolve("1", guild))

	data, err := os.ReadFile(filepath.Join(dir, store.NoPrefixFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"1": {"active": false, "expires_at": "2025-06-14T08:30:00", "granted_by": 1429162914543304794},
		"2": {"active": "yes", "expires_at": 42}
	}`, string(data))
}

func TestParseExpiry(t *testing.T) {
	testCases := []struct {
		input    string
		expected time.Time
	}{
		{"2025-06-14T08:30:00.123456", time.Date(2025, 6, 14, 8, 30, 0, 123456000, time.Local)},
		{"2025-06-14T08:30:00", time.Date(2025, 6, 14, 8, 30, 0, 0, time.Local)},
		{"2025-06-14 08:30:00", time.Date(2025, 6, 14, 8, 30, 0, 0, time.Local)},
		{"2025-06-14T08:30", time.Date(2025, 6, 14, 8, 30, 0, 0, time.Local)},
		{"2025-06-14", time.Date(2025, 6, 14, 0, 0, 0, 0, time.Local)},
		{"2025-06-14T08:30:00Z", time.Date(2025, 6, 14, 8, 30, 0, 0, time.UTC)},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseExpiry(tc.input)
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(got), "got %s", got)
		})
	}

	_, err := ParseExpiry("soon")
	require.Error(t, err)
}

func TestMatch(t *testing.T) {
	testCases := []struct {
		name            string
		content         string
		prefixes        []string
		caseInsensitive bool
		prefix          string
		rest            string
		ok              bool
	}{
		{"default", "cx help", []string{"cx "}, false, "cx ", "help", true},
		{"no match", "hello", []string{"cx "}, false, "", "", false},
		{"empty prefix does not shadow", "cx help", []string{"", "cx "}, false, "cx ", "help", true},
		{"empty prefix", "balance", []string{"", "cx "}, false, "", "balance", true},
		{"case sensitive", "CX help", []string{"cx "}, false, "", "", false},
		{"case insensitive", "CX help", []string{"cx "}, true, "cx ", "help", true},
		{"short content", "c", []string{"cx "}, false, "", "", false},
		{"fold changes byte length", "\u212A! ping", []string{"k! "}, true, "k! ", "ping", true},
		{"multi-byte prefix", "É help", []string{"é "}, true, "é ", "help", true},
		{"multi-byte prefix case sensitive", "É help", []string{"é "}, false, "", "", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prefix, rest, ok := Match(tc.content, tc.prefixes, tc.caseInsensitive)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.prefix, prefix)
			assert.Equal(t, tc.rest, rest)
		})
	}
}
