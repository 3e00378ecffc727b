package config

func (m *Manager) GetDefault() *Config {
	return &Config{
		App: App{
			LogLevel:   "info",
			GinMode:    "release",
			Scrollback: 500,
			HTTPAddr:   ":8080",
		},
	}
}
