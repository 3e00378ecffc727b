package ports

// Error codes reported by the recent-messages service alongside a
// non-success status.
const (
	HistoryErrorChannelIgnored   = "channel_ignored"
	HistoryErrorChannelNotJoined = "channel_not_joined"
)

type RecentMessages struct {
	Messages  []string
	ErrorCode string
}

type Chatters struct {
	Total []string
}

// HistoryPort is the channel backlog API.
type HistoryPort interface {
	GetRecentMessages(channel string) (*RecentMessages, error)
	GetChatters(channel string) (*Chatters, error)
}
