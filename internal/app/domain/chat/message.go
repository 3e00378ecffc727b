package chat

import (
	"strings"
	"time"
)

const DefaultColor = "#717171"

// Message is the tagged union over all chat entry variants. ID uniqueness
// within a channel log is relied on for merge deduplication; Timestamp
// defines the total order used for sorting and merging.
type Message interface {
	ID() string
	Timestamp() time.Time
	Channel() string
	Highlights() Highlights
}

// Highlights classifies a message for the mention/notification index.
type Highlights struct {
	Mention   bool
	Highlight bool
	Whisper   bool
	Notify    bool
}

func (h Highlights) HasMention() bool {
	return h.Mention || h.Whisper
}

func (h Highlights) ShouldNotify() bool {
	return h.Notify
}

type Badge struct {
	Tag     string // e.g. "moderator/1"
	Name    string
	Version string
}

func (b Badge) Is(name string) bool {
	return strings.HasPrefix(b.Tag, name)
}

type PrivMessage struct {
	MsgID           string
	Time            time.Time
	ChannelName     string
	UserID          string
	Name            string // login
	DisplayName     string
	Color           string
	OriginalMessage string
	Message         string
	Badges          []Badge
	Emotes          []Emote
	IsAction        bool
	IsFirst         bool
	TimedOut        bool
	RewardID        string
	Highlight       Highlights
}

func (m *PrivMessage) ID() string { return m.MsgID }
func (m *PrivMessage) Timestamp() time.Time { return m.Time }
func (m *PrivMessage) Channel() string { return m.ChannelName }
func (m *PrivMessage) Highlights() Highlights { return m.Highlight }

type Emote struct {
	Name     string
	Code     string
	Start    int
	End      int
	ImageURL string
}

type NoticeMessage struct {
	MsgID       string
	Time        time.Time
	ChannelName string
	NoticeTag   string // msg-id tag, e.g. "msg_ratelimit"
	Message     string
	Highlight   Highlights
}

func (m *NoticeMessage) ID() string { return m.MsgID }
func (m *NoticeMessage) Timestamp() time.Time { return m.Time }
func (m *NoticeMessage) Channel() string { return m.ChannelName }
func (m *NoticeMessage) Highlights() Highlights { return m.Highlight }

type UserNoticeMessage struct {
	MsgID        string
	Time         time.Time
	ChannelName  string
	SystemMsg    string
	NoticeTag    string // sub, resub, raid, ...
	Name         string
	ChildMessage *PrivMessage // the user's own text attached to the notice
	Highlight    Highlights
}

func (m *UserNoticeMessage) ID() string { return m.MsgID }
func (m *UserNoticeMessage) Timestamp() time.Time { return m.Time }
func (m *UserNoticeMessage) Channel() string { return m.ChannelName }
func (m *UserNoticeMessage) Highlights() Highlights { return m.Highlight }

type WhisperMessage struct {
	MsgID                string
	Time                 time.Time
	UserID               string
	Name                 string
	DisplayName          string
	Color                string
	RecipientID          string
	RecipientName        string
	RecipientDisplayName string
	RecipientColor       string
	Message              string
	Emotes               []Emote
	Highlight            Highlights
}

func (m *WhisperMessage) ID() string { return m.MsgID }
func (m *WhisperMessage) Timestamp() time.Time { return m.Time }

// Channel returns the reserved whisper tag; whispers live in a dedicated
// global log, not a per-channel one.
func (m *WhisperMessage) Channel() string { return WhisperChannelTag }
func (m *WhisperMessage) Highlights() Highlights { return m.Highlight }

type ModerationAction int

const (
	ActionClear ModerationAction = iota
	ActionTimeout
	ActionBan
	ActionDelete
)

func (a ModerationAction) String() string {
	switch a {
	case ActionClear:
		return "clear"
	case ActionTimeout:
		return "timeout"
	case ActionBan:
		return "ban"
	case ActionDelete:
		return "delete"
	}
	return "unknown"
}

type ModerationMessage struct {
	MsgID       string
	Time        time.Time
	ChannelName string
	Action      ModerationAction
	TargetUser  string
	TargetMsgID string
	Duration    time.Duration
	StackCount  int
	FromPubSub  bool
}

func (m *ModerationMessage) ID() string { return m.MsgID }
func (m *ModerationMessage) Timestamp() time.Time { return m.Time }
func (m *ModerationMessage) Channel() string { return m.ChannelName }
func (m *ModerationMessage) Highlights() Highlights { return Highlights{} }

// CanClearMessages reports whether the action redacts prior messages in
// the log. A delete always targets a single message id; the others sweep.
func (m *ModerationMessage) CanClearMessages() bool {
	switch m.Action {
	case ActionClear, ActionTimeout, ActionBan, ActionDelete:
		return true
	}
	return false
}

type PointRedemptionMessage struct {
	MsgID             string
	Time              time.Time
	ChannelName       string
	UserID            string
	Name              string
	DisplayName       string
	RewardTitle       string
	RewardCost        int
	RewardImageURL    string
	RequiresUserInput bool
	Highlight         Highlights
}

func (m *PointRedemptionMessage) ID() string { return m.MsgID }
func (m *PointRedemptionMessage) Timestamp() time.Time { return m.Time }
func (m *PointRedemptionMessage) Channel() string { return m.ChannelName }
func (m *PointRedemptionMessage) Highlights() Highlights { return m.Highlight }

// Reserved channel tags for global state not tied to a joined channel.
const (
	GlobalChannelTag  = "*"
	WhisperChannelTag = "w"
)
