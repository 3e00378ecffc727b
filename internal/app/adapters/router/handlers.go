package router

import (
	"log/slog"
	"strings"

	"chatsync/internal/app/adapters/metrics"
	"chatsync/internal/app/domain/chat"
	"chatsync/internal/app/domain/session"

	"github.com/prometheus/client_golang/prometheus"
)

func (r *Router) handleClearChat(msg *chat.IRCMessage) {
	r.applyModeration(chat.ParseClearChat(msg))
}

func (r *Router) handleClearMsg(msg *chat.IRCMessage) {
	mod := chat.ParseClearMsg(msg)
	if mod.TargetMsgID == "" {
		return
	}
	r.applyModeration(mod)
}

func (r *Router) applyModeration(mod *chat.ModerationMessage) {
	ch, ok := r.reg.Get(mod.ChannelName)
	if !ok {
		return
	}

	appended := ch.Log().ReplaceModeration(mod)
	metrics.ModerationActions.With(prometheus.Labels{"channel": mod.ChannelName, "action": mod.Action.String()}).Inc()
	if !appended {
		metrics.CoalescedModerations.With(prometheus.Labels{"channel": mod.ChannelName}).Inc()
	}
}

func (r *Router) handleRoomState(msg *chat.IRCMessage) {
	channel := msg.ChannelParam()
	if channel == "" {
		return
	}
	r.reg.Channel(channel).MergeRoomState(msg)
}

func (r *Router) handleGlobalUserState(msg *chat.IRCMessage) {
	r.reg.UpdateUserState(func(state *session.UserState) {
		if id := msg.Tag("user-id"); id != "" {
			state.UserID = id
		}
		if color := msg.Tag("color"); color != "" {
			state.Color = color
		}
		if name := msg.Tag("display-name"); name != "" {
			state.DisplayName = name
		}
		if sets := msg.Tag("emote-sets"); sets != "" {
			state.GlobalEmoteSets = strings.Split(sets, ",")
		}
	})
}

// handleUserState updates the per-channel view of the user: follower
// emote sets are the per-channel sets minus the global ones, and a
// broadcaster or moderator badge grants the channel moderation rights.
func (r *Router) handleUserState(msg *chat.IRCMessage) {
	channel := msg.ChannelParam()
	if channel == "" {
		return
	}

	var sets []string
	if raw := msg.Tag("emote-sets"); raw != "" {
		sets = strings.Split(raw, ",")
	}

	hasModeration := false
	for _, badge := range chat.ParseBadgeTags(msg.Tag("badges")) {
		if badge.Is("broadcaster") || badge.Is("moderator") {
			hasModeration = true
			break
		}
	}

	r.reg.UpdateUserState(func(state *session.UserState) {
		if id := msg.Tag("user-id"); id != "" {
			state.UserID = id
		}
		if color := msg.Tag("color"); color != "" {
			state.Color = color
		}
		if name := msg.Tag("display-name"); name != "" {
			state.DisplayName = name
		}

		if len(state.GlobalEmoteSets) > 0 {
			global := make(map[string]struct{}, len(state.GlobalEmoteSets))
			for _, set := range state.GlobalEmoteSets {
				global[set] = struct{}{}
			}
			follower := make([]string, 0, len(sets))
			for _, set := range sets {
				if _, ok := global[set]; !ok {
					follower = append(follower, set)
				}
			}
			state.FollowerEmoteSets[channel] = follower
		} else {
			state.FollowerEmoteSets[channel] = nil
		}

		if hasModeration {
			state.ModerationChannels[channel] = struct{}{}
		}
	})
}

// handleWhisper is the chat-stream whisper path, active only while the
// push stream does not carry the whisper topic so a whisper is never
// delivered twice.
func (r *Router) handleWhisper(msg *chat.IRCMessage) {
	if r.pubsub.ConnectedAndHasWhisperTopic() {
		return
	}

	if r.pipeline.IsUserBlocked(msg.Tag("user-id")) {
		metrics.DroppedMessages.With(prometheus.Labels{"reason": "blocked"}).Inc()
		return
	}

	state := r.reg.UserState()
	message := r.runPipeline(chat.ParseWhisper(msg, state.DisplayName, state.Color))
	whisper, ok := message.(*chat.WhisperMessage)
	if !ok {
		return
	}

	r.deliverWhisper(whisper, whisper.UserID != state.UserID)
}

// deliverWhisper appends to the dedicated whisper log, refreshes the
// sender's presence and bumps the whisper tab counter. Own outgoing
// whispers skip the counter.
func (r *Router) deliverWhisper(whisper *chat.WhisperMessage, countMention bool) {
	item := chat.NewMentionItem(whisper)
	r.reg.Whispers().Append(item)

	if !countMention {
		return
	}

	r.reg.GlobalPresence().Put(whisper.Name, whisper.DisplayName)
	r.reg.AddWhisperMention()
	if item.Message.Highlights().ShouldNotify() {
		r.reg.EmitNotifications([]chat.ChatItem{item})
	}
}

// handleMessage is the generic chat-stream path for PRIVMSG, NOTICE and
// USERNOTICE. A message tagged with a custom reward id may have to wait
// for its redemption metadata; that wait runs on its own goroutine so the
// listener loop keeps draining other messages in order.
func (r *Router) handleMessage(msg *chat.IRCMessage) {
	if r.pipeline.IsUserBlocked(msg.Tag("user-id")) {
		metrics.DroppedMessages.With(prometheus.Labels{"reason": "blocked"}).Inc()
		return
	}

	rewardID := msg.Tag("custom-reward-id")
	if rewardID == "" {
		r.finishMessage(msg, nil)
		return
	}

	if reward, ok := r.rewards.Take(rewardID); ok {
		metrics.RewardCorrelations.With(prometheus.Labels{"outcome": "immediate"}).Inc()
		r.finishMessage(msg, reward)
		return
	}

	go func() {
		reward, ok := r.rewards.Wait(rewardID, rewardWaitTimeout)
		outcome := "timeout"
		if ok {
			outcome = "waited"
		}
		metrics.RewardCorrelations.With(prometheus.Labels{"outcome": outcome}).Inc()
		r.safely(func() { r.finishMessage(msg, reward) })
	}()
}

func (r *Router) finishMessage(msg *chat.IRCMessage, reward *chat.RedemptionData) {
	message := chat.Parse(msg)
	if message == nil {
		r.log.Debug("Unhandled chat command", slog.String("command", msg.Command))
		return
	}

	message = r.runPipeline(message)
	if message == nil {
		metrics.DroppedMessages.With(prometheus.Labels{"reason": "ignored"}).Inc()
		return
	}

	if notice, ok := message.(*chat.NoticeMessage); ok && notice.ChannelName == chat.GlobalChannelTag {
		r.reg.Each(func(ch *session.Channel) {
			ch.Log().Append(chat.NewItem(notice))
		})
		return
	}

	switch message.(type) {
	case *chat.PrivMessage, *chat.UserNoticeMessage, *chat.NoticeMessage:
	default:
		return
	}

	// messages for channels the session never joined carry no state to
	// update and are dropped
	ch, ok := r.reg.Get(message.Channel())
	if !ok {
		metrics.DroppedMessages.With(prometheus.Labels{"reason": "unknown_channel"}).Inc()
		return
	}

	if priv, ok := message.(*chat.PrivMessage); ok {
		r.observePrivMessage(ch, priv)
	}

	items := make([]chat.ChatItem, 0, 3)
	if reward != nil {
		items = append(items, chat.NewItem(chat.FromRedemption(message.Channel(), message.Timestamp(), *reward)))
	}
	if notice, ok := message.(*chat.UserNoticeMessage); ok && notice.ChildMessage != nil {
		items = append(items, chat.NewItem(notice.ChildMessage))
	}
	items = append(items, chat.NewItem(message))

	ch.Log().AppendAll(items)
	metrics.MessagesPerChannel.With(prometheus.Labels{"channel": ch.Name()}).Add(float64(len(items)))

	r.indexMentions(ch, message, items)
}

// observePrivMessage covers the side observations a PRIVMSG carries: the
// user's own echoed message confirms VIP status and resets duplicate
// suppression, and every sender refreshes the channel presence cache.
func (r *Router) observePrivMessage(ch *session.Channel, priv *chat.PrivMessage) {
	cfg := r.manager.Get()

	if priv.Name == cfg.App.Username {
		previous := trimEndInvisible(ch.LastSent())
		if previous != trimEndInvisible(priv.OriginalMessage) {
			ch.SetLastSent(priv.OriginalMessage)
		}

		hasVIP := false
		for _, badge := range priv.Badges {
			if badge.Is("vip") {
				hasVIP = true
				break
			}
		}
		r.reg.UpdateUserState(func(state *session.UserState) {
			if hasVIP {
				state.VIPChannels[priv.ChannelName] = struct{}{}
			} else {
				delete(state.VIPChannels, priv.ChannelName)
			}
		})
	}

	ch.Presence().Put(priv.Name, priv.DisplayName)
}

// indexMentions feeds the produced items into the mention/notification
// index: the global mentions log always, the notification stream for
// notify-eligible items, and the owning channel's counters only while it
// is not the foregrounded channel.
func (r *Router) indexMentions(ch *session.Channel, message chat.Message, items []chat.ChatItem) {
	notify := make([]chat.ChatItem, 0, len(items))
	mentions := make([]chat.ChatItem, 0, len(items))
	for _, item := range items {
		if item.Message.Highlights().ShouldNotify() {
			notify = append(notify, item)
		}
		if item.Message.Highlights().HasMention() {
			item.IsMentionTab = true
			mentions = append(mentions, item)
		}
	}

	r.reg.EmitNotifications(notify)
	if len(mentions) > 0 {
		r.reg.Mentions().AppendAll(mentions)
	}

	if ch.Name() == r.reg.ActiveChannel() {
		return
	}

	if len(mentions) > 0 {
		ch.AddMentions(len(mentions))
		metrics.MentionCount.With(prometheus.Labels{"channel": ch.Name()}).Set(float64(ch.MentionCount()))
	}
	if _, ok := message.(*chat.PrivMessage); ok {
		ch.MarkUnread()
	}
}

func (r *Router) runPipeline(message chat.Message) chat.Message {
	message = r.pipeline.ApplyIgnores(message)
	if message == nil {
		return nil
	}
	message = r.pipeline.CalculateHighlightState(message)
	message = r.pipeline.ParseEmotesAndBadges(message)
	return r.pipeline.CalculateUserDisplay(message)
}
