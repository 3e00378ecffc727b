package chat

import (
	"fmt"
	"time"
)

type SystemMessageType int

const (
	SystemConnected SystemMessageType = iota
	SystemDisconnected
	SystemReconnected
	SystemChannelNonExistent
	SystemLoginExpired
	SystemHistoryUnavailable
	SystemHistoryIgnored
	SystemHistoryIncomplete
	SystemNoHistoryLoaded
	SystemCustom
)

type SystemMessage struct {
	Type        SystemMessageType
	Time        time.Time
	ChannelName string
	Custom      string // set for SystemCustom and SystemHistoryUnavailable status
}

func NewSystemMessage(t SystemMessageType, channel string) *SystemMessage {
	return &SystemMessage{Type: t, Time: time.Now(), ChannelName: channel}
}

func (m *SystemMessage) ID() string {
	return fmt.Sprintf("system-%d-%d", m.Type, m.Time.UnixNano())
}

func (m *SystemMessage) Timestamp() time.Time { return m.Time }
func (m *SystemMessage) Channel() string { return m.ChannelName }
func (m *SystemMessage) Highlights() Highlights { return Highlights{} }

func (m *SystemMessage) Text() string {
	switch m.Type {
	case SystemConnected:
		return "connected"
	case SystemDisconnected:
		return "disconnected"
	case SystemReconnected:
		return "reconnected"
	case SystemChannelNonExistent:
		return "channel does not exist"
	case SystemLoginExpired:
		return "login expired, please log in again"
	case SystemHistoryUnavailable:
		if m.Custom != "" {
			return "history unavailable (" + m.Custom + ")"
		}
		return "history unavailable"
	case SystemHistoryIgnored:
		return "channel has message history disabled"
	case SystemHistoryIncomplete:
		return "message history may be incomplete"
	case SystemNoHistoryLoaded:
		return "message history not loaded"
	case SystemCustom:
		return m.Custom
	}
	return ""
}
