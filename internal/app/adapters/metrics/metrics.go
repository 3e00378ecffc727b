package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesPerChannel = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatsync_messages_total",
			Help: "Chat messages appended per channel",
		},
		[]string{"channel"},
	)

	ModerationActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatsync_moderation_actions_total",
			Help: "Moderation events processed per channel and action",
		},
		[]string{"channel", "action"},
	)

	CoalescedModerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatsync_moderation_coalesced_total",
			Help: "Moderation events absorbed into an existing item",
		},
		[]string{"channel"},
	)

	ConnectionState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chatsync_connection_state",
			Help: "Per-channel connection state (0 disconnected, 1 connected, 2 anonymous)",
		},
		[]string{"channel"},
	)

	MentionCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chatsync_mention_count",
			Help: "Unseen mention count per channel",
		},
		[]string{"channel"},
	)

	DroppedMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatsync_dropped_messages_total",
			Help: "Messages dropped before append",
		},
		[]string{"reason"},
	)

	HistoryLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatsync_history_loads_total",
			Help: "History load attempts per outcome",
		},
		[]string{"outcome"},
	)

	RewardCorrelations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatsync_reward_correlations_total",
			Help: "Point-redemption correlation outcomes",
		},
		[]string{"outcome"},
	)
)
