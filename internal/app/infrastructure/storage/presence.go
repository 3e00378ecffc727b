package storage

import (
	"sort"
	"strings"

	"github.com/maypok86/otter/v2"
)

const presenceCapacity = 5000

// Presence is a per-channel bounded cache from lowercase login to the
// best-known display name. High-traffic channels evict the least recently
// seen users first, which bounds memory at the cost of forgetting rarely
// active chatters.
type Presence struct {
	cache *otter.Cache[string, string]
}

func NewPresence() *Presence {
	return &Presence{
		cache: otter.Must(&otter.Options[string, string]{
			MaximumSize: presenceCapacity,
		}),
	}
}

// Put records a user sighting. The stored value prefers a display name
// that differs from the login only by case; anything else (localized
// display names) falls back to the login so suggestions stay typeable.
func (p *Presence) Put(login, displayName string) {
	key := strings.ToLower(login)
	value := login
	if strings.EqualFold(displayName, login) && displayName != "" {
		value = displayName
	}
	p.cache.Set(key, value)
}

// PutIfAbsent records a sighting without demoting an existing entry.
// Used for bulk chatters loads, where only logins are known.
func (p *Presence) PutIfAbsent(login string) {
	key := strings.ToLower(login)
	if _, ok := p.cache.GetIfPresent(key); ok {
		return
	}
	p.cache.Set(key, login)
}

// Snapshot returns the deduplicated set of known names, sorted for a
// stable live view.
func (p *Presence) Snapshot() []string {
	seen := make(map[string]struct{}, p.cache.EstimatedSize())
	for _, v := range p.cache.All() {
		seen[v] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (p *Presence) Len() int {
	return p.cache.EstimatedSize()
}
