package router

import (
	"chatsync/internal/app/adapters/metrics"
	"chatsync/internal/app/domain/chat"
	"chatsync/internal/app/ports"

	"github.com/prometheus/client_golang/prometheus"
)

func (r *Router) onPubSubEvent(event ports.PubSubEvent) {
	switch event.Kind {
	case ports.PubSubPointRedemption:
		r.handleRedemption(event)
	case ports.PubSubWhisper:
		r.handlePubSubWhisper(event)
	}
}

// handleRedemption routes a point redemption: one that expects user input
// is parked for correlation with the chat message that will follow, the
// rest render immediately.
func (r *Router) handleRedemption(event ports.PubSubEvent) {
	data := event.Redemption
	if data == nil || r.pipeline.IsUserBlocked(data.UserID) {
		return
	}

	if data.RequiresUserInput {
		r.rewards.Offer(data)
		return
	}

	message := r.runPipeline(chat.FromRedemption(event.Channel, event.Timestamp, *data))
	if message == nil {
		return
	}

	ch, ok := r.reg.Get(event.Channel)
	if !ok {
		return
	}
	ch.Log().Append(chat.NewItem(message))
	metrics.MessagesPerChannel.With(prometheus.Labels{"channel": event.Channel}).Inc()
}

// handlePubSubWhisper is the push-stream whisper path, used while the
// whisper topic is active; the chat-stream path gates itself on the same
// flag so only one of them delivers.
func (r *Router) handlePubSubWhisper(event ports.PubSubEvent) {
	data := event.Whisper
	if data == nil || r.pipeline.IsUserBlocked(data.UserID) {
		return
	}

	state := r.reg.UserState()
	message := r.runPipeline(&chat.WhisperMessage{
		MsgID:                "whisper-" + data.MessageID,
		Time:                 data.SentAt,
		UserID:               data.UserID,
		Name:                 data.Login,
		DisplayName:          data.DisplayName,
		Color:                data.Color,
		RecipientID:          data.RecipientID,
		RecipientName:        state.DisplayName,
		RecipientDisplayName: state.DisplayName,
		RecipientColor:       state.Color,
		Message:              data.Message,
		Highlight:            chat.Highlights{Whisper: true, Notify: true},
	})
	whisper, ok := message.(*chat.WhisperMessage)
	if !ok {
		return
	}

	r.deliverWhisper(whisper, data.UserID != state.UserID)
}
