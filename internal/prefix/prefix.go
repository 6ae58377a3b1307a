// Package prefix decides which command prefixes apply to a message.
package prefix

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"cxbot/internal/store"

	"go.uber.org/zap"
)

// Resolver reads the data files on every call. It holds no state of its own
// besides configuration.
type Resolver struct {
	Store   *store.Store
	Default string
	OwnerID string
	Logger  *zap.SugaredLogger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Resolve returns the prefixes accepted from authorID. guildID is empty for
// direct messages.
func (r *Resolver) Resolve(authorID, guildID string) []string {
	if prefixes, ok := r.noPrefix(authorID); ok {
		return prefixes
	}

	if guildID == "" {
		return []string{r.Default}
	}

	prefixes, err := r.Store.Prefixes()
	if err != nil {
		if !store.IsUnavailable(err) {
			r.logger().Warnw("Reading guild prefixes failed", "error", err)
		}
		return []string{r.Default}
	}
	if p, ok := prefixes[guildID]; ok {
		return []string{p}
	}
	return []string{r.Default}
}

// noPrefix applies the no-prefix privilege. ok is false when the decision
// falls through to the guild prefix.
func (r *Resolver) noPrefix(authorID string) ([]string, bool) {
	users, err := r.Store.NoPrefixUsers()
	if err != nil {
		if !store.IsUnavailable(err) {
			r.logger().Warnw("Reading no-prefix users failed", "error", err)
		}
		if authorID == r.OwnerID {
			return []string{"", r.Default}, true
		}
		return nil, false
	}

	user, ok := users[authorID]
	if !ok {
		return nil, false
	}
	if !user.Active || user.Malformed {
		return []string{r.Default}, true
	}

	expires := user.ExpiresAt
	if expires == store.Lifetime {
		return []string{"", r.Default}, true
	}

	expiry, err := ParseExpiry(expires)
	if err != nil {
		return []string{r.Default}, true
	}
	if expiry.Before(r.now()) {
		if err := r.Store.DeactivateNoPrefix(authorID); err != nil {
			r.logger().Errorw("Persisting expired no-prefix privilege failed", "user", authorID, "error", err)
		} else {
			r.logger().Infow("No-prefix privilege expired", "user", authorID, "expired_at", expires)
		}
		return []string{r.Default}, true
	}
	return []string{"", r.Default}, true
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Resolver) logger() *zap.SugaredLogger {
	if r.Logger != nil {
		return r.Logger
	}
	return zap.NewNop().Sugar()
}

var expiryLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseExpiry parses an ISO-8601 timestamp. Timestamps without an offset are
// in local time.
func ParseExpiry(s string) (time.Time, error) {
	var err error
	for _, layout := range expiryLayouts {
		var t time.Time
		t, err = time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// Match finds the longest prefix in prefixes that content starts with and
// returns it along with the remaining text.
func Match(content string, prefixes []string, caseInsensitive bool) (string, string, bool) {
	sorted := append([]string(nil), prefixes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})

	for _, p := range sorted {
		if rest, ok := cutPrefix(content, p, caseInsensitive); ok {
			return p, rest, true
		}
	}
	return "", "", false
}

// cutPrefix compares rune by rune, since case folding can change how many
// bytes a rune takes.
func cutPrefix(s, prefix string, caseInsensitive bool) (string, bool) {
	if !caseInsensitive {
		return strings.CutPrefix(s, prefix)
	}
	for _, want := range prefix {
		if s == "" {
			return "", false
		}
		got, size := utf8.DecodeRuneInString(s)
		if got != want && !strings.EqualFold(string(got), string(want)) {
			return "", false
		}
		s = s[size:]
	}
	return s, true
}
