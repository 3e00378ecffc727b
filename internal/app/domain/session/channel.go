package session

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"chatsync/internal/app/domain/chat"
	"chatsync/internal/app/infrastructure/storage"
)

type ConnectionState int32

const (
	Disconnected ConnectionState = iota
	Connected
	ConnectedNotLoggedIn
)

func (s ConnectionState) String() string {
	switch s {
	case Connected:
		return "connected"
	case ConnectedNotLoggedIn:
		return "connected_not_logged_in"
	}
	return "disconnected"
}

// Channel is the per-channel session state. All fields are independently
// guarded so concurrent listeners never contend on a channel-wide lock.
type Channel struct {
	name     string
	log      *storage.ChatLog
	presence *storage.Presence

	connState     atomic.Int32
	mentionCount  atomic.Int64
	unread        atomic.Bool
	historyLoaded atomic.Bool

	roomMu    sync.RWMutex
	roomState chat.RoomState

	lastMu   sync.Mutex
	lastSent string

	limiterMu sync.Mutex
	limiter   *rate.Limiter
	interval  time.Duration
}

func newChannel(name string, scrollback int) *Channel {
	return &Channel{
		name:      name,
		log:       storage.NewChatLog(scrollback),
		presence:  storage.NewPresence(),
		roomState: *chat.NewRoomState(name),
	}
}

func (c *Channel) Name() string                { return c.name }
func (c *Channel) Log() *storage.ChatLog       { return c.log }
func (c *Channel) Presence() *storage.Presence { return c.presence }

func (c *Channel) ConnectionState() ConnectionState {
	return ConnectionState(c.connState.Load())
}

func (c *Channel) SetConnectionState(state ConnectionState) {
	c.connState.Store(int32(state))
}

func (c *Channel) RoomState() chat.RoomState {
	c.roomMu.RLock()
	defer c.roomMu.RUnlock()
	return c.roomState
}

func (c *Channel) MergeRoomState(msg *chat.IRCMessage) chat.RoomState {
	c.roomMu.Lock()
	defer c.roomMu.Unlock()
	c.roomState = c.roomState.CopyFromIRC(msg)
	return c.roomState
}

func (c *Channel) MentionCount() int {
	return int(c.mentionCount.Load())
}

func (c *Channel) AddMentions(n int) {
	c.mentionCount.Add(int64(n))
}

func (c *Channel) ClearMentionCount() {
	c.mentionCount.Store(0)
}

func (c *Channel) Unread() bool {
	return c.unread.Load()
}

// MarkUnread sets the flag once; re-marking an already-unread channel is
// a no-op so consumers see at most one transition.
func (c *Channel) MarkUnread() {
	c.unread.CompareAndSwap(false, true)
}

func (c *Channel) ClearUnread() {
	c.unread.Store(false)
}

func (c *Channel) HistoryLoaded() bool {
	return c.historyLoaded.Load()
}

func (c *Channel) MarkHistoryLoaded() {
	c.historyLoaded.Store(true)
}

func (c *Channel) LastSent() string {
	c.lastMu.Lock()
	defer c.lastMu.Unlock()
	return c.lastSent
}

func (c *Channel) SetLastSent(msg string) {
	c.lastMu.Lock()
	defer c.lastMu.Unlock()
	c.lastSent = msg
}

// SendLimiter returns the channel's outbound limiter, retuned when the
// user's rate class changed since the last send.
func (c *Channel) SendLimiter(interval time.Duration) *rate.Limiter {
	c.limiterMu.Lock()
	defer c.limiterMu.Unlock()

	if c.limiter == nil || c.interval != interval {
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
		c.interval = interval
	}
	return c.limiter
}
