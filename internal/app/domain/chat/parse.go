package chat

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse converts a wire message into its typed variant. Returns nil for
// commands that carry no chat content (handled elsewhere by the router).
func Parse(msg *IRCMessage) Message {
	switch msg.Command {
	case "PRIVMSG":
		return parsePrivMessage(msg)
	case "NOTICE":
		return parseNoticeMessage(msg)
	case "USERNOTICE":
		return parseUserNoticeMessage(msg)
	case "WHISPER":
		return ParseWhisper(msg, "", "")
	case "CLEARCHAT":
		return ParseClearChat(msg)
	case "CLEARMSG":
		return ParseClearMsg(msg)
	}
	return nil
}

func parsePrivMessage(msg *IRCMessage) *PrivMessage {
	text := msg.Param(1)
	isAction := false
	if strings.HasPrefix(text, "\x01ACTION ") && strings.HasSuffix(text, "\x01") {
		text = strings.TrimSuffix(strings.TrimPrefix(text, "\x01ACTION "), "\x01")
		isAction = true
	}

	name := msg.Nick()
	return &PrivMessage{
		MsgID:           msg.Tag("id"),
		Time:            parseTimestamp(msg),
		ChannelName:     msg.ChannelParam(),
		UserID:          msg.Tag("user-id"),
		Name:            name,
		DisplayName:     displayNameOr(msg.Tag("display-name"), name),
		Color:           colorOr(msg.Tag("color")),
		OriginalMessage: msg.Param(1),
		Message:         text,
		Badges:          ParseBadgeTags(msg.Tag("badges")),
		IsAction:        isAction,
		IsFirst:         msg.Tag("first-msg") == "1",
		RewardID:        msg.Tag("custom-reward-id"),
	}
}

func parseNoticeMessage(msg *IRCMessage) *NoticeMessage {
	channel := msg.ChannelParam()
	if msg.Param(0) == "*" {
		channel = GlobalChannelTag
	}

	n := &NoticeMessage{
		MsgID:       msg.Tag("id"),
		Time:        parseTimestamp(msg),
		ChannelName: channel,
		NoticeTag:   msg.Tag("msg-id"),
		Message:     msg.Param(1),
	}
	if n.MsgID == "" {
		n.MsgID = fmt.Sprintf("notice-%s-%d", n.NoticeTag, n.Time.UnixNano())
	}
	return n
}

func parseUserNoticeMessage(msg *IRCMessage) *UserNoticeMessage {
	n := &UserNoticeMessage{
		MsgID:       msg.Tag("id"),
		Time:        parseTimestamp(msg),
		ChannelName: msg.ChannelParam(),
		SystemMsg:   msg.Tag("system-msg"),
		NoticeTag:   msg.Tag("msg-id"),
		Name:        msg.Tag("login"),
	}

	// announcements and resubs carry the user's own text as a child message
	if text := msg.Param(1); text != "" {
		child := parsePrivMessage(msg)
		child.MsgID = n.MsgID + "-msg"
		child.Name = n.Name
		child.DisplayName = displayNameOr(msg.Tag("display-name"), n.Name)
		n.ChildMessage = child
	}
	return n
}

// ParseWhisper builds a whisper from its IRC delivery. The recipient is
// the current user; their display name and color come from session state.
func ParseWhisper(msg *IRCMessage, recipientDisplayName, recipientColor string) *WhisperMessage {
	name := msg.Nick()
	return &WhisperMessage{
		MsgID:                fmt.Sprintf("whisper-%s-%d", msg.Tag("message-id"), parseTimestamp(msg).UnixNano()),
		Time:                 parseTimestamp(msg),
		UserID:               msg.Tag("user-id"),
		Name:                 name,
		DisplayName:          displayNameOr(msg.Tag("display-name"), name),
		Color:                colorOr(msg.Tag("color")),
		RecipientName:        msg.Param(0),
		RecipientDisplayName: displayNameOr(recipientDisplayName, msg.Param(0)),
		RecipientColor:       colorOr(recipientColor),
		Message:              msg.Param(1),
		Highlight:            Highlights{Whisper: true, Notify: true},
	}
}

// ParseClearChat maps a CLEARCHAT line to a moderation message: no target
// user means a full chat clear, a ban-duration tag means a timeout,
// otherwise a permanent ban.
func ParseClearChat(msg *IRCMessage) *ModerationMessage {
	target := msg.Param(1)
	ts := parseTimestamp(msg)

	m := &ModerationMessage{
		MsgID:       fmt.Sprintf("clearchat-%s-%d", target, ts.UnixNano()),
		Time:        ts,
		ChannelName: msg.ChannelParam(),
		TargetUser:  target,
		StackCount:  1,
	}
	switch {
	case target == "":
		m.Action = ActionClear
	case msg.Tag("ban-duration") != "":
		m.Action = ActionTimeout
		if secs, err := strconv.Atoi(msg.Tag("ban-duration")); err == nil {
			m.Duration = time.Duration(secs) * time.Second
		}
	default:
		m.Action = ActionBan
	}
	return m
}

func ParseClearMsg(msg *IRCMessage) *ModerationMessage {
	ts := parseTimestamp(msg)
	return &ModerationMessage{
		MsgID:       fmt.Sprintf("clearmsg-%s-%d", msg.Tag("target-msg-id"), ts.UnixNano()),
		Time:        ts,
		ChannelName: msg.ChannelParam(),
		Action:      ActionDelete,
		TargetUser:  msg.Tag("login"),
		TargetMsgID: msg.Tag("target-msg-id"),
		StackCount:  1,
	}
}

// FromRedemption renders a point redemption as a chat entry.
func FromRedemption(channel string, ts time.Time, data RedemptionData) *PointRedemptionMessage {
	return &PointRedemptionMessage{
		MsgID:             "redemption-" + data.ID,
		Time:              ts,
		ChannelName:       channel,
		UserID:            data.UserID,
		Name:              data.UserLogin,
		DisplayName:       displayNameOr(data.UserDisplayName, data.UserLogin),
		RewardTitle:       data.RewardTitle,
		RewardCost:        data.RewardCost,
		RewardImageURL:    data.ImageURL,
		RequiresUserInput: data.RequiresUserInput,
	}
}

// RedemptionData mirrors the push-stream redemption payload fields the
// chat entry needs.
type RedemptionData struct {
	ID                string
	RewardID          string
	RewardTitle       string
	RewardCost        int
	RequiresUserInput bool
	UserID            string
	UserLogin         string
	UserDisplayName   string
	UserInput         string
	ImageURL          string
}

func parseTimestamp(msg *IRCMessage) time.Time {
	if ts := msg.Tag("tmi-sent-ts"); ts != "" {
		if millis, err := strconv.ParseInt(ts, 10, 64); err == nil {
			return time.UnixMilli(millis)
		}
	}
	return time.Now()
}

// ParseBadgeTags splits the badges tag into its badge/version pairs.
func ParseBadgeTags(raw string) []Badge {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	badges := make([]Badge, 0, len(parts))
	for _, part := range parts {
		b := Badge{Tag: part}
		if idx := strings.IndexByte(part, '/'); idx != -1 {
			b.Name = part[:idx]
			b.Version = part[idx+1:]
		} else {
			b.Name = part
		}
		badges = append(badges, b)
	}
	return badges
}

func displayNameOr(displayName, fallback string) string {
	if displayName == "" {
		return fallback
	}
	return displayName
}

func colorOr(color string) string {
	if color == "" {
		return DefaultColor
	}
	return color
}
