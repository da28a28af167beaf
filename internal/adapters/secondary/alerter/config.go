package alerter

// Config чат для алертов о сбоях джоб. BotToken пустой - алерты идут через основного бота.
type Config struct {
	BotToken        string `envconfig:"BOT_TOKEN"`
	ChatID          int64  `envconfig:"CHAT_ID"`
	MessageThreadID *int64 `envconfig:"MESSAGE_THREAD_ID"`
}

// Enabled алерты включены, если задан чат
func (c *Config) Enabled() bool {
	return c != nil && c.ChatID != 0
}
