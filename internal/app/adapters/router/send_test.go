package router

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsync/internal/app/domain/chat"
)

func TestRouter_PrepareMessage(t *testing.T) {
	env := newTestEnv(t)
	env.reg.Channel("pajlada")

	t.Run("blank_input_rejected", func(t *testing.T) {
		_, ok := env.router.prepareMessage("pajlada", "   ")
		assert.False(t, ok)
	})

	t.Run("trailing_whitespace_trimmed", func(t *testing.T) {
		prepared, ok := env.router.prepareMessage("pajlada", "hello  \t")
		require.True(t, ok)
		assert.Equal(t, "PRIVMSG #pajlada :hello", prepared)
	})

	t.Run("duplicate_gets_invisible_suffix", func(t *testing.T) {
		env := newTestEnv(t)
		env.reg.Channel("pajlada")

		first, ok := env.router.prepareMessage("pajlada", "same text")
		require.True(t, ok)
		assert.Equal(t, "PRIVMSG #pajlada :same text", first)

		second, ok := env.router.prepareMessage("pajlada", "same text")
		require.True(t, ok)
		assert.Equal(t, "PRIVMSG #pajlada :same text "+invisibleChar, second)

		// the marker is stripped before comparing, so repeats keep the suffix
		third, ok := env.router.prepareMessage("pajlada", "same text")
		require.True(t, ok)
		assert.Equal(t, second, third)
	})

	t.Run("zero_width_joiner_escaped", func(t *testing.T) {
		env := newTestEnv(t)
		env.reg.Channel("pajlada")

		prepared, ok := env.router.prepareMessage("pajlada", "emote"+zeroWidthJoiner+"combo")
		require.True(t, ok)
		assert.NotContains(t, prepared, zeroWidthJoiner)
		assert.Contains(t, prepared, escapeTag)
	})
}

func TestRouter_SendMessage(t *testing.T) {
	t.Run("no_active_channel", func(t *testing.T) {
		env := newTestEnv(t)
		assert.False(t, env.router.SendMessage("hello"))
		assert.Empty(t, env.write.sent)
	})

	t.Run("sends_to_active_channel", func(t *testing.T) {
		env := newTestEnv(t)
		env.reg.Channel("pajlada")
		env.reg.SetActiveChannel("pajlada")

		assert.True(t, env.router.SendMessage("hello"))
		require.Len(t, env.write.sent, 1)
		assert.Equal(t, "PRIVMSG #pajlada :hello", env.write.sent[0])
	})
}

func TestRouter_FakeWhisperEcho(t *testing.T) {
	t.Run("synthesized_without_pubsub_topic", func(t *testing.T) {
		env := newTestEnv(t)
		env.reg.Channel("pajlada")
		env.reg.SetActiveChannel("pajlada")

		env.router.SendMessage("/w nymn secret message")

		items := env.reg.Whispers().Snapshot()
		require.Len(t, items, 1)
		whisper := items[0].Message.(*chat.WhisperMessage)
		assert.Equal(t, "nymn", whisper.RecipientName)
		assert.Equal(t, "secret message", whisper.Message)
	})

	t.Run("skipped_while_pubsub_carries_whispers", func(t *testing.T) {
		env := newTestEnv(t)
		env.reg.Channel("pajlada")
		env.reg.SetActiveChannel("pajlada")
		env.pubsub.connected = true
		env.pubsub.whisperTopic = true

		env.router.SendMessage("/w nymn secret message")
		assert.Equal(t, 0, env.reg.Whispers().Len())
	})

	t.Run("plain_message_synthesizes_nothing", func(t *testing.T) {
		env := newTestEnv(t)
		env.reg.Channel("pajlada")
		env.reg.SetActiveChannel("pajlada")

		env.router.SendMessage("just chatting")
		assert.Equal(t, 0, env.reg.Whispers().Len())
	})
}

func TestTrimEndInvisible(t *testing.T) {
	assert.Equal(t, "hello", trimEndInvisible("hello "+invisibleChar))
	assert.Equal(t, "hello", trimEndInvisible("hello"))
	assert.False(t, strings.HasSuffix(trimEndInvisible("x "+invisibleChar), invisibleChar))
}
