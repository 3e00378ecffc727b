package chat

import "strconv"

// RoomState is the per-channel room mode snapshot. IRC ROOMSTATE updates
// are partial; CopyFromIRC merges only the tags present on the message.
type RoomState struct {
	Channel        string
	ChannelID      string
	EmoteOnly      bool
	FollowersOnly  int // minutes, -1 = off
	R9k            bool
	Slow           int // seconds, 0 = off
	SubsOnly       bool
}

func NewRoomState(channel string) *RoomState {
	return &RoomState{Channel: channel, FollowersOnly: -1}
}

func (r RoomState) CopyFromIRC(msg *IRCMessage) RoomState {
	if v, ok := msg.Tags["room-id"]; ok {
		r.ChannelID = v
	}
	if v, ok := msg.Tags["emote-only"]; ok {
		r.EmoteOnly = v == "1"
	}
	if v, ok := msg.Tags["followers-only"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			r.FollowersOnly = n
		}
	}
	if v, ok := msg.Tags["r9k"]; ok {
		r.R9k = v == "1"
	}
	if v, ok := msg.Tags["slow"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			r.Slow = n
		}
	}
	if v, ok := msg.Tags["subs-only"]; ok {
		r.SubsOnly = v == "1"
	}
	return r
}
