package pubsub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chatsync/internal/app/domain/chat"
	"chatsync/internal/app/infrastructure/config"
	"chatsync/internal/app/infrastructure/storage"
	"chatsync/internal/app/ports"
	"chatsync/pkg/logger"
)

const (
	pubsubURL    = "wss://pubsub-edge.twitch.tv"
	pingInterval = 4 * time.Minute
	pongTimeout  = 10 * time.Second
)

// PubSub maintains the push-notification websocket: channel-points
// redemptions per joined channel plus the whisper topic when the
// session has credentials.
type PubSub struct {
	log    logger.Logger
	cfg    *config.Config
	client *http.Client
	events chan ports.PubSubEvent

	mu        sync.Mutex
	ws        *websocket.Conn
	topics    map[string]string // topic -> channel name
	ids       *storage.Cache[string]
	connected bool
	whispers  bool
	closing   bool
	nonce     int
	lastPong  time.Time
}

func New(log logger.Logger, cfg *config.Config, client *http.Client) *PubSub {
	return &PubSub{
		log:    log,
		cfg:    cfg,
		client: client,
		events: make(chan ports.PubSubEvent, 256),
		topics: make(map[string]string),
		ids:    storage.NewCache[string](64, 24*time.Hour, "cache/ids.json"),
	}
}

func (p *PubSub) Events() <-chan ports.PubSubEvent {
	return p.events
}

func (p *PubSub) Start() {
	go p.run()
}

func (p *PubSub) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *PubSub) ConnectedAndHasWhisperTopic() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected && p.whispers
}

func (p *PubSub) AddChannel(channel string) {
	id, err := p.resolveChannelID(channel)
	if err != nil {
		p.log.Warn("Failed to resolve channel id for pubsub", slog.String("channel", channel), slog.Any("error", err))
		return
	}

	topic := "community-points-channel-v1." + id

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.topics[topic]; ok {
		return
	}
	p.topics[topic] = channel
	if p.ws != nil {
		p.listenLocked([]string{topic})
	}
}

func (p *PubSub) RemoveChannel(channel string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for topic, name := range p.topics {
		if name != channel {
			continue
		}
		delete(p.topics, topic)
		if p.ws != nil {
			p.nonce++
			_ = p.ws.WriteJSON(listenFrame{
				Type:  "UNLISTEN",
				Nonce: strconv.Itoa(p.nonce),
				Data:  listenData{Topics: []string{topic}, AuthToken: p.cfg.App.OAuth},
			})
		}
		return
	}
}

func (p *PubSub) Reconnect() {
	p.mu.Lock()
	ws := p.ws
	p.mu.Unlock()

	if ws != nil {
		_ = ws.Close()
	}
}

func (p *PubSub) ReconnectIfNecessary() {
	if !p.Connected() {
		p.Reconnect()
	}
}

func (p *PubSub) Close() {
	p.mu.Lock()
	p.closing = true
	ws := p.ws
	p.mu.Unlock()

	if ws != nil {
		_ = ws.Close()
	}
}

func (p *PubSub) run() {
	for {
		err := p.connectAndListen()

		p.mu.Lock()
		p.connected = false
		p.whispers = false
		p.ws = nil
		closing := p.closing
		p.mu.Unlock()

		if closing {
			return
		}
		if err != nil {
			p.log.Warn("PubSub connection lost, retrying...", slog.Any("error", err))
		}
		time.Sleep(5 * time.Second)
	}
}

func (p *PubSub) connectAndListen() error {
	ws, _, err := websocket.DefaultDialer.Dial(pubsubURL, nil)
	if err != nil {
		return fmt.Errorf("dial pubsub: %w", err)
	}
	defer ws.Close()

	p.mu.Lock()
	p.ws = ws
	p.connected = true
	p.lastPong = time.Now()

	topics := make([]string, 0, len(p.topics)+1)
	for topic := range p.topics {
		topics = append(topics, topic)
	}
	if p.cfg.App.UserID != "" && p.cfg.App.OAuth != "" {
		topics = append(topics, "whispers."+p.cfg.App.UserID)
		p.whispers = true
	}
	if len(topics) > 0 {
		p.listenLocked(topics)
	}
	p.mu.Unlock()

	p.log.Info("Connected to Twitch PubSub")

	stop := make(chan struct{})
	defer close(stop)
	go p.pingLoop(ws, stop)

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return fmt.Errorf("read pubsub message: %w", err)
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			p.log.Error("Failed to decode pubsub frame", err, slog.String("frame", string(raw)))
			continue
		}

		switch f.Type {
		case "PONG":
			p.mu.Lock()
			p.lastPong = time.Now()
			p.mu.Unlock()
		case "RECONNECT":
			return fmt.Errorf("server requested reconnect")
		case "RESPONSE":
			if f.Error != "" {
				p.log.Warn("PubSub listen rejected", slog.String("error", f.Error), slog.String("nonce", f.Nonce))
			}
		case "MESSAGE":
			p.dispatch(f.Data.Topic, f.Data.Message)
		}
	}
}

func (p *PubSub) pingLoop(ws *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_ = ws.WriteJSON(frame{Type: "PING"})
			time.Sleep(pongTimeout)

			p.mu.Lock()
			stale := time.Since(p.lastPong) > pingInterval
			p.mu.Unlock()
			if stale {
				_ = ws.Close()
				return
			}
		}
	}
}

func (p *PubSub) listenLocked(topics []string) {
	p.nonce++
	_ = p.ws.WriteJSON(listenFrame{
		Type:  "LISTEN",
		Nonce: strconv.Itoa(p.nonce),
		Data:  listenData{Topics: topics, AuthToken: p.cfg.App.OAuth},
	})
}

func (p *PubSub) dispatch(topic, message string) {
	switch {
	case strings.HasPrefix(topic, "community-points-channel-v1."):
		p.mu.Lock()
		channel := p.topics[topic]
		p.mu.Unlock()
		if channel == "" {
			return
		}
		p.dispatchRedemption(channel, message)
	case strings.HasPrefix(topic, "whispers."):
		p.dispatchWhisper(message)
	}
}

func (p *PubSub) dispatchRedemption(channel, message string) {
	var tm topicMessage
	if err := json.Unmarshal([]byte(message), &tm); err != nil || tm.Type != "reward-redeemed" {
		return
	}

	var data redemptionData
	if err := json.Unmarshal(tm.Data, &data); err != nil {
		p.log.Error("Failed to decode redemption payload", err, slog.String("message", message))
		return
	}

	imageURL := data.Redemption.Reward.DefaultImage.URL2x
	if data.Redemption.Reward.Image != nil && data.Redemption.Reward.Image.URL2x != "" {
		imageURL = data.Redemption.Reward.Image.URL2x
	}

	ts, err := time.Parse(time.RFC3339Nano, data.Timestamp)
	if err != nil {
		ts = time.Now()
	}

	p.events <- ports.PubSubEvent{
		Kind:      ports.PubSubPointRedemption,
		Channel:   channel,
		Timestamp: ts,
		Redemption: &chat.RedemptionData{
			ID:                data.Redemption.ID,
			RewardID:          data.Redemption.Reward.ID,
			RewardTitle:       data.Redemption.Reward.Title,
			RewardCost:        data.Redemption.Reward.Cost,
			RequiresUserInput: data.Redemption.Reward.IsUserInputRequired,
			UserID:            data.Redemption.User.ID,
			UserLogin:         data.Redemption.User.Login,
			UserDisplayName:   data.Redemption.User.DisplayName,
			UserInput:         data.Redemption.UserInput,
			ImageURL:          imageURL,
		},
	}
}

func (p *PubSub) dispatchWhisper(message string) {
	var data whisperData
	if err := json.Unmarshal([]byte(message), &data); err != nil {
		return
	}
	if data.Type != "whisper_received" && data.Type != "whisper_sent" {
		return
	}

	var body whisperBody
	if err := json.Unmarshal(data.DataObject, &body); err != nil {
		p.log.Error("Failed to decode whisper payload", err, slog.String("message", message))
		return
	}

	p.events <- ports.PubSubEvent{
		Kind:      ports.PubSubWhisper,
		Timestamp: time.Unix(body.SentTs, 0),
		Whisper: &ports.WhisperData{
			MessageID:   body.MessageID,
			UserID:      strconv.FormatInt(body.FromID, 10),
			Login:       body.Tags.Login,
			DisplayName: body.Tags.DisplayName,
			Color:       body.Tags.Color,
			Message:     body.Body,
			RecipientID: strconv.FormatInt(body.Recipient.ID, 10),
			SentAt:      time.Unix(body.SentTs, 0),
		},
	}
}

func (p *PubSub) resolveChannelID(channel string) (string, error) {
	if id, ok := p.ids.Get(channel); ok {
		return id, nil
	}

	req, err := http.NewRequest("GET", "https://api.twitch.tv/helix/users?login="+channel, nil)
	if err != nil {
		return "", fmt.Errorf("create users request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.App.OAuth)
	req.Header.Set("Client-Id", p.cfg.App.ClientID)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send users request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("twitch returned %s", resp.Status)
	}

	var users helixUsersResponse
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return "", fmt.Errorf("decode users response: %w", err)
	}
	if len(users.Data) == 0 {
		return "", fmt.Errorf("no user found for login %q", channel)
	}

	p.ids.Set(channel, users.Data[0].ID)
	return users.Data[0].ID, nil
}
