package router

import (
	"log/slog"
	"time"

	"chatsync/internal/app/adapters/metrics"
	"chatsync/internal/app/domain/chat"
	"chatsync/internal/app/domain/session"
	"chatsync/internal/app/infrastructure/config"
	"chatsync/internal/app/infrastructure/storage"
	"chatsync/internal/app/ports"
	"chatsync/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	rewardWaitTimeout = 1000 * time.Millisecond
	pendingRewardTTL  = 5 * time.Minute
)

// Router merges the three external event streams into log, presence,
// session and mention-index mutations. It is the only writer of
// per-channel state; consumers read live snapshots through the registry.
type Router struct {
	log     logger.Logger
	manager *config.Manager
	reg     *session.Registry

	read     ports.ChatConnectionPort
	write    ports.ChatConnectionPort
	pubsub   ports.PubSubPort
	pipeline ports.PipelinePort
	rewards  *storage.Rewards
}

func New(log logger.Logger, manager *config.Manager, reg *session.Registry,
	read, write ports.ChatConnectionPort, pubsub ports.PubSubPort, pipeline ports.PipelinePort) *Router {

	r := &Router{
		log:      log,
		manager:  manager,
		reg:      reg,
		read:     read,
		write:    write,
		pubsub:   pubsub,
		pipeline: pipeline,
		rewards:  storage.NewRewards(pendingRewardTTL),
	}

	go r.listenRead()
	go r.listenWrite()
	go r.listenPubSub()

	return r
}

func (r *Router) Registry() *session.Registry {
	return r.reg
}

// listenRead consumes the read connection. Events for one channel are
// applied in arrival order; a failure while handling one event never
// stops the loop.
func (r *Router) listenRead() {
	for event := range r.read.Events() {
		r.safely(func() { r.onReadEvent(event) })
	}
}

func (r *Router) listenWrite() {
	for event := range r.write.Events() {
		if event.Kind != ports.ChatEventMessage {
			continue
		}
		r.safely(func() { r.onWriterMessage(event.Message) })
	}
}

func (r *Router) listenPubSub() {
	for event := range r.pubsub.Events() {
		r.safely(func() { r.onPubSubEvent(event) })
	}
}

func (r *Router) safely(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("Panic while processing event", nil, slog.Any("panic", rec))
		}
	}()
	fn()
}

func (r *Router) onReadEvent(event ports.ChatEvent) {
	switch event.Kind {
	case ports.ChatEventConnected:
		r.handleConnected(event.Channel, event.IsAnonymous)
	case ports.ChatEventClosed, ports.ChatEventError:
		r.handleDisconnect()
	case ports.ChatEventChannelNonExistent:
		r.postSystemMessage(chat.NewSystemMessage(chat.SystemChannelNonExistent, event.Channel), event.Channel)
	case ports.ChatEventLoginFailed:
		r.broadcastSystemMessage(chat.SystemLoginExpired)
	case ports.ChatEventMessage:
		r.onMessage(event.Message)
	}
}

func (r *Router) onMessage(msg *chat.IRCMessage) {
	switch msg.Command {
	case "CLEARCHAT":
		r.handleClearChat(msg)
	case "ROOMSTATE":
		r.handleRoomState(msg)
	case "CLEARMSG":
		r.handleClearMsg(msg)
	case "USERSTATE":
		r.handleUserState(msg)
	case "GLOBALUSERSTATE":
		r.handleGlobalUserState(msg)
	case "WHISPER":
		r.handleWhisper(msg)
	default:
		r.handleMessage(msg)
	}
}

// onWriterMessage handles echoes on the write connection. Only the state
// confirmations and server notices for the user's own actions matter.
func (r *Router) onWriterMessage(msg *chat.IRCMessage) {
	switch msg.Command {
	case "USERSTATE":
		r.handleUserState(msg)
	case "GLOBALUSERSTATE":
		r.handleGlobalUserState(msg)
	case "NOTICE":
		r.handleMessage(msg)
	}
}

func (r *Router) handleConnected(channel string, isAnonymous bool) {
	state := session.Connected
	if isAnonymous {
		state = session.ConnectedNotLoggedIn
	}

	r.postSystemMessage(chat.NewSystemMessage(chat.SystemConnected, channel), channel)
	ch := r.reg.Channel(channel)
	ch.SetConnectionState(state)
	metrics.ConnectionState.With(prometheus.Labels{"channel": channel}).Set(float64(state))
}

// handleDisconnect is terminal for every channel regardless of which
// connection event triggered it.
func (r *Router) handleDisconnect() {
	r.reg.Each(func(ch *session.Channel) {
		ch.SetConnectionState(session.Disconnected)
		metrics.ConnectionState.With(prometheus.Labels{"channel": ch.Name()}).Set(0)
	})
	r.broadcastSystemMessage(chat.SystemDisconnected)
}

func (r *Router) postSystemMessage(msg *chat.SystemMessage, channel string) {
	if ch, ok := r.reg.Get(channel); ok {
		ch.Log().AddSystemMessage(msg)
	}
}

func (r *Router) broadcastSystemMessage(t chat.SystemMessageType) {
	r.reg.Each(func(ch *session.Channel) {
		ch.Log().AddSystemMessage(chat.NewSystemMessage(t, ch.Name()))
	})
}

// PostCustomSystemMessage surfaces an application-level notice in a
// channel's log.
func (r *Router) PostCustomSystemMessage(text, channel string) {
	msg := chat.NewSystemMessage(chat.SystemCustom, channel)
	msg.Custom = text
	r.postSystemMessage(msg, channel)
}

// ConnectAndJoin brings up all three streams and joins the configured
// channels. Safe to call when already connected.
func (r *Router) ConnectAndJoin(channels []string) {
	if !r.pubsub.Connected() {
		r.pubsub.Start()
	}

	if !r.read.Connected() {
		cfg := r.manager.Get()
		r.read.Connect(cfg.App.Username, cfg.App.OAuth)
		r.write.Connect(cfg.App.Username, cfg.App.OAuth)
		r.joinChannels(channels)
	}
}

func (r *Router) joinChannels(channels []string) {
	for _, channel := range channels {
		r.reg.Channel(channel)
	}
	r.read.JoinChannels(channels)
}

func (r *Router) JoinChannel(channel string) {
	if _, ok := r.reg.Get(channel); ok {
		return
	}

	r.reg.Channel(channel)
	r.read.JoinChannel(channel)
	r.pubsub.AddChannel(channel)
}

func (r *Router) PartChannel(channel string) {
	r.reg.Remove(channel)
	r.read.PartChannel(channel)
	r.write.PartChannel(channel)
	r.pubsub.RemoveChannel(channel)
}

func (r *Router) Reconnect() {
	r.read.Reconnect()
	r.write.Reconnect()
	r.pubsub.Reconnect()
}

func (r *Router) ReconnectIfNecessary() {
	r.read.ReconnectIfNecessary()
	r.write.ReconnectIfNecessary()
	r.pubsub.ReconnectIfNecessary()
}

// CloseAndReconnect tears down all connections and joins the current
// channel set again from scratch.
func (r *Router) CloseAndReconnect() {
	channels := r.reg.Names()

	r.read.Close()
	r.write.Close()
	r.pubsub.Close()
	r.ConnectAndJoin(channels)
}

func (r *Router) SetActiveChannel(channel string) {
	r.reg.SetActiveChannel(channel)
}

func (r *Router) Clear(channel string) {
	if ch, ok := r.reg.Get(channel); ok {
		ch.Log().Clear()
	}
}

func (r *Router) ClearMentionCount(channel string) {
	if channel == chat.WhisperChannelTag {
		r.reg.ClearWhisperMentions()
		return
	}
	if ch, ok := r.reg.Get(channel); ok {
		ch.ClearMentionCount()
		metrics.MentionCount.With(prometheus.Labels{"channel": channel}).Set(0)
	}
}

func (r *Router) ClearMentionCounts() {
	r.reg.ClearMentionCounts()
}

func (r *Router) ClearUnread(channel string) {
	if ch, ok := r.reg.Get(channel); ok {
		ch.ClearUnread()
	}
}
