package history

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"chatsync/internal/app/ports"
)

const (
	recentMessagesURL = "https://recent-messages.robotty.de/api/v2/recent-messages/%s"
	chattersURL       = "https://tmi.twitch.tv/group/user/%s/chatters"
)

// API implements the history port over the recent-messages and chatters
// HTTP services.
type API struct {
	client *http.Client
}

func NewAPI(client *http.Client) *API {
	return &API{client: client}
}

type recentMessagesDTO struct {
	Messages  []string `json:"messages"`
	Error     string   `json:"error"`
	ErrorCode string   `json:"error_code"`
}

type chattersDTO struct {
	Chatters struct {
		Broadcaster []string `json:"broadcaster"`
		VIPs        []string `json:"vips"`
		Moderators  []string `json:"moderators"`
		Viewers     []string `json:"viewers"`
	} `json:"chatters"`
}

func (a *API) GetRecentMessages(channel string) (*ports.RecentMessages, error) {
	resp, err := a.client.Get(fmt.Sprintf(recentMessagesURL, channel))
	if err != nil {
		return nil, fmt.Errorf("fetch recent messages: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read recent messages: %w", err)
	}

	var dto recentMessagesDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return nil, fmt.Errorf("decode recent messages: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest && dto.ErrorCode == "" {
		return nil, fmt.Errorf("recent messages status %d", resp.StatusCode)
	}

	return &ports.RecentMessages{
		Messages:  dto.Messages,
		ErrorCode: dto.ErrorCode,
	}, nil
}

func (a *API) GetChatters(channel string) (*ports.Chatters, error) {
	resp, err := a.client.Get(fmt.Sprintf(chattersURL, channel))
	if err != nil {
		return nil, fmt.Errorf("fetch chatters: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chatters status %d", resp.StatusCode)
	}

	var dto chattersDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("decode chatters: %w", err)
	}

	total := make([]string, 0,
		len(dto.Chatters.Broadcaster)+len(dto.Chatters.VIPs)+len(dto.Chatters.Moderators)+len(dto.Chatters.Viewers))
	total = append(total, dto.Chatters.Broadcaster...)
	total = append(total, dto.Chatters.VIPs...)
	total = append(total, dto.Chatters.Moderators...)
	total = append(total, dto.Chatters.Viewers...)

	return &ports.Chatters{Total: total}, nil
}
