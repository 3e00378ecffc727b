package router

import (
	"strings"
	"time"

	"chatsync/internal/app/domain/chat"
)

const (
	// appended when a message repeats the previous one, so the server's
	// identical-message suppression sees distinct payloads
	invisibleChar = "\U000E0000"
	// replaces zero width joiners, which the server strips from echoes
	escapeTag       = "\U000E0002"
	zeroWidthJoiner = "‍"
)

// SendMessage prepares and sends the input to the active channel.
// Returns false for blank input.
func (r *Router) SendMessage(input string) bool {
	channel := r.reg.ActiveChannel()
	if channel == "" {
		return false
	}

	prepared, ok := r.prepareMessage(channel, input)
	if !ok {
		return false
	}

	ch := r.reg.Channel(channel)
	limiter := ch.SendLimiter(r.reg.UserState().SendInterval(channel))
	reservation := limiter.Reserve()
	if delay := reservation.Delay(); delay > 0 {
		time.Sleep(delay)
	}
	r.write.SendMessage(prepared)

	r.maybeFakeWhisper(input)
	return true
}

// prepareMessage trims the input, suppresses server-side duplicate
// detection with an invisible suffix when the text repeats the last sent
// message, and escapes zero width joiners. The prepared text is recorded
// as last-sent before the wire command is built.
func (r *Router) prepareMessage(channel, input string) (string, bool) {
	if strings.TrimSpace(input) == "" {
		return "", false
	}
	trimmed := strings.TrimRight(input, " \t\r\n")

	ch := r.reg.Channel(channel)
	withSuffix := trimmed
	if ch.LastSent() != "" && trimEndInvisible(ch.LastSent()) == trimmed {
		withSuffix = trimmed + " " + invisibleChar
	}

	escaped := strings.ReplaceAll(withSuffix, zeroWidthJoiner, escapeTag)
	ch.SetLastSent(escaped)
	return "PRIVMSG #" + channel + " :" + escaped, true
}

func trimEndInvisible(s string) string {
	return strings.TrimSuffix(s, " "+invisibleChar)
}

// maybeFakeWhisper synthesizes a local whisper echo for /w commands while
// the push stream has no whisper topic: the server will not echo the
// whisper back, so without this the sender never sees their own message.
func (r *Router) maybeFakeWhisper(input string) {
	if r.pubsub.ConnectedAndHasWhisperTopic() {
		return
	}

	split := strings.Split(input, " ")
	if len(split) <= 2 || (split[0] != "/w" && split[0] != ".w") || split[1] == "" {
		return
	}

	text := input[len(split[0])+1+len(split[1])+1:]
	state := r.reg.UserState()
	cfg := r.manager.Get()

	whisper := &chat.WhisperMessage{
		MsgID:                "fake-whisper-" + time.Now().Format(time.RFC3339Nano),
		Time:                 time.Now(),
		UserID:               state.UserID,
		Name:                 cfg.App.Username,
		DisplayName:          state.DisplayName,
		Color:                state.Color,
		RecipientName:        split[1],
		RecipientDisplayName: split[1],
		RecipientColor:       chat.DefaultColor,
		Message:              text,
	}
	r.reg.Whispers().Append(chat.NewMentionItem(whisper))
}
