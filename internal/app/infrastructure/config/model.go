package config

type Config struct {
	App     App      `json:"app"`
	Ignores []string `json:"ignores"` // blocked user ids
}

type App struct {
	LogLevel   string   `json:"log_level"`
	GinMode    string   `json:"gin_mode"`
	Username   string   `json:"username"`
	UserID     string   `json:"user_id"`
	OAuth      string   `json:"oauth"`
	ClientID   string   `json:"client_id"`
	Channels   []string `json:"channels"`
	Scrollback int      `json:"scrollback"`
	HTTPAddr   string   `json:"http_addr"`
	AuthToken  string   `json:"auth_token"`
}
