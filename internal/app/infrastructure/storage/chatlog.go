package storage

import (
	"sort"
	"sync"
	"time"

	"chatsync/internal/app/domain/chat"
)

const (
	// moderation coalescing scans at most this many trailing entries
	coalesceLookback = 20
	// repeated moderation reports within this window describe one action
	coalesceWindow = 5 * time.Second
)

// ChatLog is a bounded, append-biased, timestamp-ordered message log.
// Live traffic goes through Append; backfill goes through MergeInsert so
// re-delivered history never duplicates or reorders live entries.
type ChatLog struct {
	mu       sync.Mutex
	items    []chat.ChatItem
	capacity int
}

func NewChatLog(capacity int) *ChatLog {
	return &ChatLog{capacity: capacity}
}

func (l *ChatLog) Append(item chat.ChatItem) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = append(l.items, item)
	l.trimFrontLocked()
}

func (l *ChatLog) AppendAll(items []chat.ChatItem) {
	if len(items) == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = append(l.items, items...)
	l.trimFrontLocked()
}

// MergeInsert is the backfill path: concatenate, drop duplicate message
// ids (first copy wins), stable-sort by timestamp ascending and keep the
// last capacity entries. Merging the same batch twice is a no-op.
func (l *ChatLog) MergeInsert(items []chat.ChatItem) {
	if len(items) == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	combined := make([]chat.ChatItem, 0, len(l.items)+len(items))
	combined = append(combined, l.items...)
	combined = append(combined, items...)

	seen := make(map[string]struct{}, len(combined))
	deduped := combined[:0]
	for _, item := range combined {
		id := item.Message.ID()
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, item)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Message.Timestamp().Before(deduped[j].Message.Timestamp())
	})

	if l.capacity > 0 && len(deduped) > l.capacity {
		deduped = deduped[len(deduped)-l.capacity:]
	}

	l.items = append([]chat.ChatItem(nil), deduped...)
}

// ReplaceModeration applies a moderation event: coalesce it with a recent
// report of the same action, redact the targeted prior messages, and
// append a new item when no prior record absorbed it. Reports whether a
// new item was appended.
func (l *ChatLog) ReplaceModeration(mod *chat.ModerationMessage) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	appendNew := true
	switch mod.Action {
	case chat.ActionTimeout, chat.ActionBan:
		appendNew = l.coalesceUserActionLocked(mod)
	case chat.ActionDelete:
		appendNew = l.coalesceDeleteLocked(mod)
	}

	l.redactLocked(mod)

	if appendNew {
		l.items = append(l.items, chat.NewItem(mod))
		l.trimFrontLocked()
	}
	return appendNew
}

// coalesceUserActionLocked scans the trailing window for a prior report of
// the same user+action. The same real event may arrive once over the chat
// stream and once over the push stream, in either order; the chat-sourced
// copy wins when both are present. Repeated timeouts stack instead.
func (l *ChatLog) coalesceUserActionLocked(mod *chat.ModerationMessage) (appendNew bool) {
	end := len(l.items) - coalesceLookback
	if end < 0 {
		end = 0
	}

	for idx := len(l.items) - 1; idx >= end; idx-- {
		prev, ok := l.items[idx].Message.(*chat.ModerationMessage)
		if !ok || prev.TargetUser != mod.TargetUser || prev.Action != mod.Action {
			continue
		}
		if mod.Time.Sub(prev.Time) >= coalesceWindow {
			break
		}

		switch {
		case mod.FromPubSub && !prev.FromPubSub:
			// late push-stream duplicate of the chat-sourced record
		case !mod.FromPubSub && prev.FromPubSub:
			l.items[idx] = l.items[idx].WithMessage(mod)
		case mod.Action == chat.ActionTimeout:
			stacked := *mod
			stacked.StackCount = prev.StackCount + 1
			l.items[idx] = l.items[idx].WithMessage(&stacked)
		}
		return false
	}
	return true
}

func (l *ChatLog) coalesceDeleteLocked(mod *chat.ModerationMessage) (appendNew bool) {
	if mod.TargetMsgID == "" {
		return true
	}

	end := len(l.items) - coalesceLookback
	if end < 0 {
		end = 0
	}

	for idx := len(l.items) - 1; idx >= end; idx-- {
		prev, ok := l.items[idx].Message.(*chat.ModerationMessage)
		if !ok || prev.Action != chat.ActionDelete || prev.TargetMsgID != mod.TargetMsgID {
			continue
		}

		if !mod.FromPubSub && prev.FromPubSub {
			l.items[idx] = l.items[idx].WithMessage(mod)
		}
		return false
	}
	return true
}

// redactLocked marks prior messages hit by the action as cleared. This is
// a full scan of the current log, not just the coalescing window.
func (l *ChatLog) redactLocked(mod *chat.ModerationMessage) {
	for idx := range l.items {
		item := l.items[idx]
		switch mod.Action {
		case chat.ActionClear:
			l.items[idx] = item.Cleared()
		case chat.ActionTimeout, chat.ActionBan:
			priv, ok := item.Message.(*chat.PrivMessage)
			if !ok || priv.Name != mod.TargetUser {
				continue
			}
			l.items[idx] = item.Cleared()
		case chat.ActionDelete:
			if item.Message.ID() != mod.TargetMsgID {
				continue
			}
			l.items[idx] = item.Cleared()
		}
	}
}

// AddSystemMessage appends a synthesized system entry. A Connected
// following a trailing Disconnected collapses into a single Reconnected
// item instead of stacking connect/disconnect pairs.
func (l *ChatLog) AddSystemMessage(msg *chat.SystemMessage) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if msg.Type == chat.SystemConnected {
		if last := len(l.items) - 1; last >= 0 {
			if prev, ok := l.items[last].Message.(*chat.SystemMessage); ok && prev.Type == chat.SystemDisconnected {
				reconnected := chat.NewSystemMessage(chat.SystemReconnected, msg.ChannelName)
				l.items[last] = l.items[last].WithMessage(reconnected)
				return
			}
		}
	}

	l.items = append(l.items, chat.NewItem(msg))
	l.trimFrontLocked()
}

func (l *ChatLog) SetCapacity(capacity int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.capacity = capacity
	l.trimFrontLocked()
}

func (l *ChatLog) Capacity() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.capacity
}

func (l *ChatLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *ChatLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}

// Snapshot returns a copy of the current log for consumers.
func (l *ChatLog) Snapshot() []chat.ChatItem {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]chat.ChatItem, len(l.items))
	copy(out, l.items)
	return out
}

func (l *ChatLog) trimFrontLocked() {
	if l.capacity > 0 && len(l.items) > l.capacity {
		over := len(l.items) - l.capacity
		l.items = append([]chat.ChatItem(nil), l.items[over:]...)
	}
}
