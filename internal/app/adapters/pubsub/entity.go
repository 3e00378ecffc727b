package pubsub

import "encoding/json"

type frame struct {
	Type  string `json:"type"`
	Nonce string `json:"nonce,omitempty"`
	Error string `json:"error,omitempty"`
	Data  struct {
		Topic   string `json:"topic"`
		Message string `json:"message"`
	} `json:"data,omitempty"`
}

type listenFrame struct {
	Type  string     `json:"type"`
	Nonce string     `json:"nonce"`
	Data  listenData `json:"data"`
}

type listenData struct {
	Topics    []string `json:"topics"`
	AuthToken string   `json:"auth_token"`
}

type topicMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type redemptionData struct {
	Timestamp  string `json:"timestamp"`
	Redemption struct {
		ID   string `json:"id"`
		User struct {
			ID          string `json:"id"`
			Login       string `json:"login"`
			DisplayName string `json:"display_name"`
		} `json:"user"`
		Reward struct {
			ID                  string `json:"id"`
			Title               string `json:"title"`
			Cost                int    `json:"cost"`
			IsUserInputRequired bool   `json:"is_user_input_required"`
			Image               *struct {
				URL2x string `json:"url_2x"`
			} `json:"image"`
			DefaultImage struct {
				URL2x string `json:"url_2x"`
			} `json:"default_image"`
		} `json:"reward"`
		UserInput string `json:"user_input"`
	} `json:"redemption"`
}

type whisperData struct {
	Type       string          `json:"type"`
	DataObject json.RawMessage `json:"data_object"`
}

type whisperBody struct {
	MessageID string `json:"message_id"`
	FromID    int64  `json:"from_id"`
	Body      string `json:"body"`
	SentTs    int64  `json:"sent_ts"`
	Tags      struct {
		Login       string `json:"login"`
		DisplayName string `json:"display_name"`
		Color       string `json:"color"`
	} `json:"tags"`
	Recipient struct {
		ID int64 `json:"id"`
	} `json:"recipient"`
}

type helixUsersResponse struct {
	Data []struct {
		ID    string `json:"id"`
		Login string `json:"login"`
	} `json:"data"`
}
