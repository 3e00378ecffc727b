package ports

import (
	"time"

	"chatsync/internal/app/domain/chat"
)

type PubSubEventKind int

const (
	PubSubPointRedemption PubSubEventKind = iota
	PubSubWhisper
)

type PubSubEvent struct {
	Kind       PubSubEventKind
	Channel    string
	Timestamp  time.Time
	Redemption *chat.RedemptionData
	Whisper    *WhisperData
}

type WhisperData struct {
	MessageID   string
	UserID      string
	Login       string
	DisplayName string
	Color       string
	Message     string
	RecipientID string
	SentAt      time.Time
}

// PubSubPort is the push-notification stream. Whispers are delivered over
// it only while the whisper topic is active; the router gates the IRC
// whisper path on ConnectedAndHasWhisperTopic to avoid duplicates.
type PubSubPort interface {
	Events() <-chan PubSubEvent
	Start()
	Close()
	Reconnect()
	ReconnectIfNecessary()
	AddChannel(channel string)
	RemoveChannel(channel string)
	Connected() bool
	ConnectedAndHasWhisperTopic() bool
}
