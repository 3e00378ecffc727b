package history

import (
	"log/slog"
	"time"

	"chatsync/internal/app/adapters/metrics"
	"chatsync/internal/app/domain/chat"
	"chatsync/internal/app/domain/session"
	"chatsync/internal/app/ports"
	"chatsync/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// Loader fetches the channel backlog and merges it into the live log.
// Loading happens at most once per channel and session: success and the
// channel-ignored outcome are sticky, fetch failures stay retryable on
// the next join.
type Loader struct {
	log      logger.Logger
	reg      *session.Registry
	api      ports.HistoryPort
	pipeline ports.PipelinePort
}

func New(log logger.Logger, reg *session.Registry, api ports.HistoryPort, pipeline ports.PipelinePort) *Loader {
	return &Loader{
		log:      log,
		reg:      reg,
		api:      api,
		pipeline: pipeline,
	}
}

// LoadRecent is the join entry point. With history disabled it posts a
// marker entry instead of fetching.
func (l *Loader) LoadRecent(channel string, loadHistory bool) {
	if !loadHistory {
		l.reg.Channel(channel).Log().AddSystemMessage(chat.NewSystemMessage(chat.SystemNoHistoryLoaded, channel))
		return
	}
	l.load(channel)
}

func (l *Loader) load(channel string) {
	ch := l.reg.Channel(channel)
	if ch.HistoryLoaded() {
		return
	}

	resp, err := l.api.GetRecentMessages(channel)
	if err != nil {
		l.log.Warn("Failed to fetch message history", slog.String("channel", channel), slog.Any("error", err))
		ch.Log().AddSystemMessage(chat.NewSystemMessage(chat.SystemHistoryUnavailable, channel))
		metrics.HistoryLoads.With(prometheus.Labels{"outcome": "unavailable"}).Inc()
		return
	}

	if resp.ErrorCode == ports.HistoryErrorChannelIgnored {
		// not a temporary error, so don't retry on the next join
		ch.MarkHistoryLoaded()
		ch.Log().AddSystemMessage(chat.NewSystemMessage(chat.SystemHistoryIgnored, channel))
		metrics.HistoryLoads.With(prometheus.Labels{"outcome": "ignored"}).Inc()
		return
	}

	ch.MarkHistoryLoaded()

	start := time.Now()
	items, mentions := l.parseBacklog(ch, resp.Messages)
	l.log.Info("Parsed message history",
		slog.String("channel", channel),
		slog.Int("messages", len(items)),
		slog.Duration("took", time.Since(start)))

	ch.Log().MergeInsert(items)
	if len(resp.Messages) > 0 && resp.ErrorCode == ports.HistoryErrorChannelNotJoined {
		ch.Log().AddSystemMessage(chat.NewSystemMessage(chat.SystemHistoryIncomplete, channel))
	}

	if len(mentions) > 0 {
		l.reg.Mentions().MergeInsert(mentions)
	}
	metrics.HistoryLoads.With(prometheus.Labels{"outcome": "ok"}).Inc()
}

// parseBacklog runs each raw line through the same pipeline as live
// traffic. Blocked senders are skipped entirely; lines the server marked
// deleted come back already cleared.
func (l *Loader) parseBacklog(ch *session.Channel, lines []string) (items, mentions []chat.ChatItem) {
	for _, line := range lines {
		parsed := chat.ParseIRC(line)
		if parsed == nil {
			continue
		}

		isCleared := parsed.Tag("rm-deleted") == "1"
		if l.pipeline.IsUserBlocked(parsed.Tag("user-id")) {
			continue
		}

		message := chat.Parse(parsed)
		if message == nil {
			continue
		}
		message = l.pipeline.ApplyIgnores(message)
		if message == nil {
			continue
		}
		message = l.pipeline.CalculateHighlightState(message)
		message = l.pipeline.ParseEmotesAndBadges(message)
		message = l.pipeline.CalculateUserDisplay(message)

		if priv, ok := message.(*chat.PrivMessage); ok {
			ch.Presence().Put(priv.Name, priv.DisplayName)
		}

		if notice, ok := message.(*chat.UserNoticeMessage); ok && notice.ChildMessage != nil {
			items = append(items, backlogItem(notice.ChildMessage, isCleared))
		}

		item := backlogItem(message, isCleared)
		items = append(items, item)
		if message.Highlights().HasMention() {
			mention := item
			mention.IsMentionTab = true
			mentions = append(mentions, mention)
		}
	}
	return items, mentions
}

func backlogItem(message chat.Message, isCleared bool) chat.ChatItem {
	item := chat.NewItem(message)
	if isCleared {
		item = item.Cleared()
	}
	return item
}

// LoadChatters seeds the channel presence cache from the chatters API
// without demoting names already observed in chat.
func (l *Loader) LoadChatters(channel string) {
	start := time.Now()
	chatters, err := l.api.GetChatters(channel)
	if err != nil {
		l.log.Warn("Failed to load chatters", slog.String("channel", channel), slog.Any("error", err))
		return
	}

	ch := l.reg.Channel(channel)
	for _, login := range chatters.Total {
		ch.Presence().PutIfAbsent(login)
	}
	l.log.Info("Loaded chatters",
		slog.String("channel", channel),
		slog.Int("count", len(chatters.Total)),
		slog.Duration("took", time.Since(start)))
}
