package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chatsync/internal/app/domain/chat"
)

func privItem(id, user string, ts time.Time) chat.ChatItem {
	return chat.NewItem(&chat.PrivMessage{
		MsgID:       id,
		Time:        ts,
		ChannelName: "pajlada",
		Name:        user,
		Message:     "message " + id,
	})
}

func TestChatLog_AppendBound(t *testing.T) {
	log := NewChatLog(5)
	base := time.Now()

	for i := 0; i < 20; i++ {
		log.Append(privItem(fmt.Sprintf("id-%d", i), "user", base.Add(time.Duration(i)*time.Second)))
	}

	items := log.Snapshot()
	assert.Len(t, items, 5)
	assert.Equal(t, "id-15", items[0].Message.ID())
	assert.Equal(t, "id-19", items[4].Message.ID())
}

func TestChatLog_MergeInsert(t *testing.T) {
	base := time.Unix(1700000000, 0)

	tests := []struct {
		name     string
		capacity int
		live     []chat.ChatItem
		backfill []chat.ChatItem
		wantIDs  []string
	}{
		{
			name:     "older_than_window_discarded",
			capacity: 3,
			live: []chat.ChatItem{
				privItem("A", "a", base.Add(1*time.Second)),
				privItem("B", "b", base.Add(2*time.Second)),
				privItem("C", "c", base.Add(3*time.Second)),
			},
			backfill: []chat.ChatItem{privItem("D", "d", base)},
			wantIDs:  []string{"A", "B", "C"},
		},
		{
			name:     "backfill_interleaves_by_timestamp",
			capacity: 10,
			live: []chat.ChatItem{
				privItem("B", "b", base.Add(2*time.Second)),
				privItem("D", "d", base.Add(4*time.Second)),
			},
			backfill: []chat.ChatItem{
				privItem("A", "a", base.Add(1*time.Second)),
				privItem("C", "c", base.Add(3*time.Second)),
			},
			wantIDs: []string{"A", "B", "C", "D"},
		},
		{
			name:     "duplicate_ids_keep_first_copy",
			capacity: 10,
			live: []chat.ChatItem{
				privItem("A", "a", base.Add(1*time.Second)),
			},
			backfill: []chat.ChatItem{
				privItem("A", "a", base.Add(1*time.Second)),
				privItem("B", "b", base.Add(2*time.Second)),
			},
			wantIDs: []string{"A", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := NewChatLog(tt.capacity)
			log.AppendAll(tt.live)
			log.MergeInsert(tt.backfill)

			var gotIDs []string
			for _, item := range log.Snapshot() {
				gotIDs = append(gotIDs, item.Message.ID())
			}
			assert.Equal(t, tt.wantIDs, gotIDs)

			// merging the same batch again must not change anything
			log.MergeInsert(tt.backfill)
			var again []string
			for _, item := range log.Snapshot() {
				again = append(again, item.Message.ID())
			}
			assert.Equal(t, gotIDs, again)
		})
	}
}

func modMsg(action chat.ModerationAction, user string, fromPubSub bool, ts time.Time) *chat.ModerationMessage {
	return &chat.ModerationMessage{
		MsgID:       fmt.Sprintf("mod-%s-%v-%d", user, fromPubSub, ts.UnixNano()),
		Time:        ts,
		ChannelName: "pajlada",
		Action:      action,
		TargetUser:  user,
		StackCount:  1,
		FromPubSub:  fromPubSub,
	}
}

func TestChatLog_CoalesceDuplicateStreams(t *testing.T) {
	base := time.Now()

	t.Run("pubsub_after_chat_is_dropped", func(t *testing.T) {
		log := NewChatLog(100)
		assert.True(t, log.ReplaceModeration(modMsg(chat.ActionBan, "weeb", false, base)))
		assert.False(t, log.ReplaceModeration(modMsg(chat.ActionBan, "weeb", true, base.Add(time.Second))))

		items := log.Snapshot()
		assert.Len(t, items, 1)
		kept := items[0].Message.(*chat.ModerationMessage)
		assert.False(t, kept.FromPubSub)
	})

	t.Run("chat_replaces_pubsub_placeholder", func(t *testing.T) {
		log := NewChatLog(100)
		assert.True(t, log.ReplaceModeration(modMsg(chat.ActionBan, "weeb", true, base)))
		assert.False(t, log.ReplaceModeration(modMsg(chat.ActionBan, "weeb", false, base.Add(time.Second))))

		items := log.Snapshot()
		assert.Len(t, items, 1)
		kept := items[0].Message.(*chat.ModerationMessage)
		assert.False(t, kept.FromPubSub)
		assert.Equal(t, 1, items[0].Tag)
	})

	t.Run("outside_window_appends_new_item", func(t *testing.T) {
		log := NewChatLog(100)
		assert.True(t, log.ReplaceModeration(modMsg(chat.ActionBan, "weeb", false, base)))
		assert.True(t, log.ReplaceModeration(modMsg(chat.ActionBan, "weeb", true, base.Add(10*time.Second))))
		assert.Equal(t, 2, log.Len())
	})

	t.Run("different_users_never_coalesce", func(t *testing.T) {
		log := NewChatLog(100)
		assert.True(t, log.ReplaceModeration(modMsg(chat.ActionBan, "weeb", false, base)))
		assert.True(t, log.ReplaceModeration(modMsg(chat.ActionBan, "nymn", true, base.Add(time.Second))))
		assert.Equal(t, 2, log.Len())
	})
}

func TestChatLog_TimeoutStacking(t *testing.T) {
	log := NewChatLog(100)
	base := time.Now()

	for i := 0; i < 3; i++ {
		log.ReplaceModeration(modMsg(chat.ActionTimeout, "weeb", false, base.Add(time.Duration(i)*time.Second)))
	}

	items := log.Snapshot()
	assert.Len(t, items, 1)
	kept := items[0].Message.(*chat.ModerationMessage)
	assert.Equal(t, 3, kept.StackCount)
}

func TestChatLog_Redaction(t *testing.T) {
	base := time.Now()

	t.Run("clear_marks_everything", func(t *testing.T) {
		log := NewChatLog(100)
		log.Append(privItem("A", "weeb", base))
		log.Append(privItem("B", "nymn", base.Add(time.Second)))

		log.ReplaceModeration(&chat.ModerationMessage{
			MsgID: "clear-1", Time: base.Add(2 * time.Second),
			ChannelName: "pajlada", Action: chat.ActionClear,
		})

		for _, item := range log.Snapshot()[:2] {
			assert.True(t, item.IsCleared)
		}
	})

	t.Run("timeout_marks_only_target", func(t *testing.T) {
		log := NewChatLog(100)
		log.Append(privItem("A", "weeb", base))
		log.Append(privItem("B", "nymn", base.Add(time.Second)))

		log.ReplaceModeration(modMsg(chat.ActionTimeout, "weeb", false, base.Add(2*time.Second)))

		items := log.Snapshot()
		assert.True(t, items[0].IsCleared)
		assert.True(t, items[0].Message.(*chat.PrivMessage).TimedOut)
		assert.False(t, items[1].IsCleared)
	})

	t.Run("delete_marks_by_message_id", func(t *testing.T) {
		log := NewChatLog(100)
		log.Append(privItem("A", "weeb", base))
		log.Append(privItem("B", "weeb", base.Add(time.Second)))

		log.ReplaceModeration(&chat.ModerationMessage{
			MsgID: "del-1", Time: base.Add(2 * time.Second),
			ChannelName: "pajlada", Action: chat.ActionDelete,
			TargetUser: "weeb", TargetMsgID: "A",
		})

		items := log.Snapshot()
		assert.True(t, items[0].IsCleared)
		assert.False(t, items[1].IsCleared)
	})
}

func TestChatLog_ConnectedCollapsesIntoReconnected(t *testing.T) {
	log := NewChatLog(100)

	log.AddSystemMessage(chat.NewSystemMessage(chat.SystemDisconnected, "pajlada"))
	log.AddSystemMessage(chat.NewSystemMessage(chat.SystemConnected, "pajlada"))

	items := log.Snapshot()
	assert.Len(t, items, 1)
	sys := items[0].Message.(*chat.SystemMessage)
	assert.Equal(t, chat.SystemReconnected, sys.Type)
}

func TestChatLog_SetCapacityTrims(t *testing.T) {
	log := NewChatLog(10)
	base := time.Now()
	for i := 0; i < 10; i++ {
		log.Append(privItem(fmt.Sprintf("id-%d", i), "user", base.Add(time.Duration(i)*time.Second)))
	}

	log.SetCapacity(4)
	items := log.Snapshot()
	assert.Len(t, items, 4)
	assert.Equal(t, "id-6", items[0].Message.ID())
}
