package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIRC(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantCommand string
		wantPrefix  string
		wantParams  []string
		wantTags    map[string]string
	}{
		{
			name:        "privmsg_with_tags",
			line:        "@badges=subscriber/12;color=#FF0000;display-name=Forsen;id=abc-123;tmi-sent-ts=1700000000000;user-id=22484632 :forsen!forsen@forsen.tmi.twitch.tv PRIVMSG #pajlada :LUL xD",
			wantCommand: "PRIVMSG",
			wantPrefix:  "forsen!forsen@forsen.tmi.twitch.tv",
			wantParams:  []string{"#pajlada", "LUL xD"},
			wantTags: map[string]string{
				"badges":       "subscriber/12",
				"color":        "#FF0000",
				"display-name": "Forsen",
				"id":           "abc-123",
				"tmi-sent-ts":  "1700000000000",
				"user-id":      "22484632",
			},
		},
		{
			name:        "ping_without_prefix",
			line:        "PING :tmi.twitch.tv",
			wantCommand: "PING",
			wantParams:  []string{"tmi.twitch.tv"},
		},
		{
			name:        "tag_escapes_unescaped",
			line:        `@system-msg=5\smonth\ssub!;flag=semi\:colon :tmi.twitch.tv USERNOTICE #pajlada`,
			wantCommand: "USERNOTICE",
			wantPrefix:  "tmi.twitch.tv",
			wantParams:  []string{"#pajlada"},
			wantTags: map[string]string{
				"system-msg": "5 month sub!",
				"flag":       "semi;colon",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ParseIRC(tt.line)
			require.NotNil(t, msg)

			assert.Equal(t, tt.wantCommand, msg.Command)
			assert.Equal(t, tt.wantPrefix, msg.Prefix)
			assert.Equal(t, tt.wantParams, msg.Params)
			for k, v := range tt.wantTags {
				assert.Equal(t, v, msg.Tag(k))
			}
		})
	}
}

func TestParseIRC_Invalid(t *testing.T) {
	assert.Nil(t, ParseIRC(""))
	assert.Nil(t, ParseIRC("\r\n"))
	assert.Nil(t, ParseIRC("@tags-without-command"))
}

func TestParse_PrivMessage(t *testing.T) {
	line := "@badges=moderator/1;color=;display-name=NymN;first-msg=1;id=msg-1;tmi-sent-ts=1700000000000;user-id=62300805 :nymn!nymn@nymn.tmi.twitch.tv PRIVMSG #pajlada :hello chat"
	msg := Parse(ParseIRC(line))
	require.NotNil(t, msg)

	priv, ok := msg.(*PrivMessage)
	require.True(t, ok)

	assert.Equal(t, "msg-1", priv.MsgID)
	assert.Equal(t, "pajlada", priv.ChannelName)
	assert.Equal(t, "nymn", priv.Name)
	assert.Equal(t, "NymN", priv.DisplayName)
	assert.Equal(t, DefaultColor, priv.Color)
	assert.Equal(t, "hello chat", priv.Message)
	assert.True(t, priv.IsFirst)
	assert.False(t, priv.IsAction)
	assert.Equal(t, time.UnixMilli(1700000000000), priv.Time)
	require.Len(t, priv.Badges, 1)
	assert.Equal(t, "moderator", priv.Badges[0].Name)
}

func TestParse_ActionMessage(t *testing.T) {
	line := "@id=msg-2;tmi-sent-ts=1700000000000 :forsen!forsen@forsen.tmi.twitch.tv PRIVMSG #pajlada :\x01ACTION waves\x01"
	priv := Parse(ParseIRC(line)).(*PrivMessage)

	assert.True(t, priv.IsAction)
	assert.Equal(t, "waves", priv.Message)
	assert.Equal(t, "\x01ACTION waves\x01", priv.OriginalMessage)
}

func TestParseClearChat(t *testing.T) {
	tests := []struct {
		name         string
		line         string
		wantAction   ModerationAction
		wantTarget   string
		wantDuration time.Duration
	}{
		{
			name:       "no_target_clears_chat",
			line:       "@tmi-sent-ts=1700000000000 :tmi.twitch.tv CLEARCHAT #pajlada",
			wantAction: ActionClear,
		},
		{
			name:         "ban_duration_is_timeout",
			line:         "@ban-duration=600;tmi-sent-ts=1700000000000 :tmi.twitch.tv CLEARCHAT #pajlada :weeb",
			wantAction:   ActionTimeout,
			wantTarget:   "weeb",
			wantDuration: 600 * time.Second,
		},
		{
			name:       "target_without_duration_is_ban",
			line:       "@tmi-sent-ts=1700000000000 :tmi.twitch.tv CLEARCHAT #pajlada :weeb",
			wantAction: ActionBan,
			wantTarget: "weeb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := ParseClearChat(ParseIRC(tt.line))
			require.NotNil(t, mod)

			assert.Equal(t, tt.wantAction, mod.Action)
			assert.Equal(t, tt.wantTarget, mod.TargetUser)
			assert.Equal(t, tt.wantDuration, mod.Duration)
			assert.Equal(t, "pajlada", mod.ChannelName)
			assert.Equal(t, 1, mod.StackCount)
		})
	}
}

func TestParseClearMsg(t *testing.T) {
	line := "@login=weeb;target-msg-id=msg-9;tmi-sent-ts=1700000000000 :tmi.twitch.tv CLEARMSG #pajlada :the deleted text"
	mod := ParseClearMsg(ParseIRC(line))

	assert.Equal(t, ActionDelete, mod.Action)
	assert.Equal(t, "weeb", mod.TargetUser)
	assert.Equal(t, "msg-9", mod.TargetMsgID)
}

func TestParseWhisper(t *testing.T) {
	line := "@message-id=41;user-id=22484632;display-name=Forsen;color=#FF0000 :forsen!forsen@forsen.tmi.twitch.tv WHISPER receiver :psst"
	w := ParseWhisper(ParseIRC(line), "Receiver", "#00FF00")

	assert.Equal(t, "forsen", w.Name)
	assert.Equal(t, "Forsen", w.DisplayName)
	assert.Equal(t, "receiver", w.RecipientName)
	assert.Equal(t, "Receiver", w.RecipientDisplayName)
	assert.Equal(t, "psst", w.Message)
	assert.Equal(t, WhisperChannelTag, w.Channel())
	assert.True(t, w.Highlight.Whisper)
}

func TestParse_UserNoticeChild(t *testing.T) {
	line := "@id=un-1;login=forsen;msg-id=resub;system-msg=Forsen\\ssubscribed;tmi-sent-ts=1700000000000 :tmi.twitch.tv USERNOTICE #pajlada :still here"
	notice := Parse(ParseIRC(line)).(*UserNoticeMessage)

	assert.Equal(t, "resub", notice.NoticeTag)
	assert.Equal(t, "Forsen subscribed", notice.SystemMsg)
	require.NotNil(t, notice.ChildMessage)
	assert.Equal(t, "un-1-msg", notice.ChildMessage.MsgID)
	assert.Equal(t, "forsen", notice.ChildMessage.Name)
	assert.Equal(t, "still here", notice.ChildMessage.Message)
}

func TestParse_UserNoticeWithoutText(t *testing.T) {
	line := "@id=un-2;login=forsen;msg-id=sub;system-msg=subbed;tmi-sent-ts=1700000000000 :tmi.twitch.tv USERNOTICE #pajlada"
	notice := Parse(ParseIRC(line)).(*UserNoticeMessage)

	assert.Nil(t, notice.ChildMessage)
}

func TestFromRedemption(t *testing.T) {
	ts := time.UnixMilli(1700000000000)
	msg := FromRedemption("pajlada", ts, RedemptionData{
		ID:          "r-1",
		RewardTitle: "Hydrate",
		RewardCost:  500,
		UserLogin:   "forsen",
	})

	assert.Equal(t, "redemption-r-1", msg.MsgID)
	assert.Equal(t, "pajlada", msg.ChannelName)
	assert.Equal(t, "forsen", msg.DisplayName)
	assert.Equal(t, 500, msg.RewardCost)
}
