package session

import (
	"sync"
	"sync/atomic"

	"chatsync/internal/app/domain/chat"
	"chatsync/internal/app/infrastructure/storage"
)

const notificationBuffer = 16

// Registry owns all per-channel session state plus the global mention and
// whisper views. It is created per application session; nothing here is a
// process-wide singleton.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*Channel
	joined   []string

	scrollback atomic.Int32
	active     atomic.Value // string

	mentions        *storage.ChatLog
	whispers        *storage.ChatLog
	globalPresence  *storage.Presence
	whisperMentions atomic.Int64
	notifications   chan []chat.ChatItem

	userState userStateHolder
}

func NewRegistry(scrollback int) *Registry {
	r := &Registry{
		channels:       make(map[string]*Channel),
		mentions:       storage.NewChatLog(scrollback),
		whispers:       storage.NewChatLog(scrollback),
		globalPresence: storage.NewPresence(),
		notifications:  make(chan []chat.ChatItem, notificationBuffer),
	}
	r.scrollback.Store(int32(scrollback))
	r.active.Store("")
	r.userState.state = newUserState()
	return r
}

// Channel returns the session state for a channel, creating it on first
// use.
func (r *Registry) Channel(name string) *Channel {
	r.mu.RLock()
	ch, ok := r.channels[name]
	r.mu.RUnlock()
	if ok {
		return ch
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok = r.channels[name]; ok {
		return ch
	}
	ch = newChannel(name, int(r.scrollback.Load()))
	r.channels[name] = ch
	r.joined = append(r.joined, name)
	return ch
}

// Get returns the channel state without creating it.
func (r *Registry) Get(name string) (*Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[name]
	return ch, ok
}

func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.channels, name)
	for i, n := range r.joined {
		if n == name {
			r.joined = append(r.joined[:i], r.joined[i+1:]...)
			break
		}
	}
}

// Names returns the joined channels in join order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.joined...)
}

func (r *Registry) Each(fn func(ch *Channel)) {
	r.mu.RLock()
	channels := make([]*Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		channels = append(channels, ch)
	}
	r.mu.RUnlock()

	for _, ch := range channels {
		fn(ch)
	}
}

func (r *Registry) Scrollback() int {
	return int(r.scrollback.Load())
}

// SetScrollback reconfigures the log capacity; shrinking re-trims every
// log immediately.
func (r *Registry) SetScrollback(n int) {
	r.scrollback.Store(int32(n))
	r.mentions.SetCapacity(n)
	r.whispers.SetCapacity(n)
	r.Each(func(ch *Channel) {
		ch.Log().SetCapacity(n)
	})
}

func (r *Registry) ActiveChannel() string {
	return r.active.Load().(string)
}

func (r *Registry) SetActiveChannel(channel string) {
	r.active.Store(channel)
}

func (r *Registry) Mentions() *storage.ChatLog { return r.mentions }
func (r *Registry) Whispers() *storage.ChatLog { return r.whispers }

// GlobalPresence tracks users seen outside a channel context, e.g.
// whisper senders.
func (r *Registry) GlobalPresence() *storage.Presence { return r.globalPresence }

func (r *Registry) WhisperMentionCount() int {
	return int(r.whisperMentions.Load())
}

func (r *Registry) AddWhisperMention() {
	r.whisperMentions.Add(1)
}

func (r *Registry) ClearWhisperMentions() {
	r.whisperMentions.Store(0)
}

// MentionCounts snapshots all counters, whisper tab included.
func (r *Registry) MentionCounts() map[string]int {
	counts := map[string]int{
		chat.WhisperChannelTag: r.WhisperMentionCount(),
	}
	r.Each(func(ch *Channel) {
		counts[ch.Name()] = ch.MentionCount()
	})
	return counts
}

func (r *Registry) ClearMentionCounts() {
	r.Each(func(ch *Channel) {
		ch.ClearMentionCount()
	})
}

func (r *Registry) Notifications() <-chan []chat.ChatItem {
	return r.notifications
}

// EmitNotifications offers items to the notification stream without
// blocking; slow consumers lose notifications rather than stalling the
// router.
func (r *Registry) EmitNotifications(items []chat.ChatItem) {
	if len(items) == 0 {
		return
	}
	select {
	case r.notifications <- items:
	default:
	}
}

func (r *Registry) UserState() UserState {
	return r.userState.Get()
}

func (r *Registry) UpdateUserState(modify func(*UserState)) {
	r.userState.Update(modify)
}
