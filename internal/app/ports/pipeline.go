package ports

import "chatsync/internal/app/domain/chat"

// PipelinePort is the external message pipeline applied to every produced
// message, live and backfilled, in this order: ignores, highlight state,
// emotes/badges, user display. ApplyIgnores returns nil when the message
// must be dropped entirely.
type PipelinePort interface {
	IsUserBlocked(userID string) bool
	ApplyIgnores(msg chat.Message) chat.Message
	CalculateHighlightState(msg chat.Message) chat.Message
	ParseEmotesAndBadges(msg chat.Message) chat.Message
	CalculateUserDisplay(msg chat.Message) chat.Message
}
