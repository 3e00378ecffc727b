package ports

import "chatsync/internal/app/domain/chat"

// ChatEventKind discriminates events emitted by a chat connection.
type ChatEventKind int

const (
	ChatEventConnected ChatEventKind = iota
	ChatEventClosed
	ChatEventChannelNonExistent
	ChatEventLoginFailed
	ChatEventMessage
	ChatEventError
)

type ChatEvent struct {
	Kind        ChatEventKind
	Channel     string
	IsAnonymous bool
	Message     *chat.IRCMessage
	Err         error
}

// ChatConnectionPort is a single IRC connection. The core runs two of
// them: a read connection that receives the channel traffic and a write
// connection used for outbound messages and their echoes.
type ChatConnectionPort interface {
	Events() <-chan ChatEvent
	Connect(username, token string)
	JoinChannel(channel string)
	JoinChannels(channels []string)
	PartChannel(channel string)
	SendMessage(raw string)
	Connected() bool
	Reconnect()
	ReconnectIfNecessary()
	Close()
}
