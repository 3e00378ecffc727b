package handlers

import (
	"time"

	"chatsync/internal/app/domain/chat"
	"chatsync/internal/app/domain/session"
	"chatsync/internal/app/infrastructure/config"
	"chatsync/pkg/logger"
)

type Handlers struct {
	log     logger.Logger
	manager *config.Manager
	reg     *session.Registry
}

func New(log logger.Logger, manager *config.Manager, reg *session.Registry) *Handlers {
	return &Handlers{
		log:     log,
		manager: manager,
		reg:     reg,
	}
}

type itemView struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Channel   string    `json:"channel"`
	User      string    `json:"user,omitempty"`
	Text      string    `json:"text,omitempty"`
	Cleared   bool      `json:"cleared,omitempty"`
	Tag       int       `json:"tag"`
}

func toItemViews(items []chat.ChatItem) []itemView {
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		v := itemView{
			ID:        item.Message.ID(),
			Timestamp: item.Message.Timestamp(),
			Channel:   item.Message.Channel(),
			Cleared:   item.IsCleared,
			Tag:       item.Tag,
		}

		switch m := item.Message.(type) {
		case *chat.PrivMessage:
			v.Kind = "message"
			v.User = m.Name
			v.Text = m.Message
		case *chat.WhisperMessage:
			v.Kind = "whisper"
			v.User = m.Name
			v.Text = m.Message
		case *chat.NoticeMessage:
			v.Kind = "notice"
			v.Text = m.Message
		case *chat.UserNoticeMessage:
			v.Kind = "usernotice"
			v.User = m.Name
			v.Text = m.SystemMsg
		case *chat.ModerationMessage:
			v.Kind = "moderation"
			v.User = m.TargetUser
			v.Text = m.Action.String()
		case *chat.PointRedemptionMessage:
			v.Kind = "redemption"
			v.User = m.Name
			v.Text = m.RewardTitle
		case *chat.SystemMessage:
			v.Kind = "system"
			v.Text = m.Text()
		default:
			v.Kind = "unknown"
		}
		views = append(views, v)
	}
	return views
}
