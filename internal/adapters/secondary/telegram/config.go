package telegram

import "strings"

type Config struct {
	BotToken   string `envconfig:"BOT_TOKEN" required:"true"`
	UseWebhook string `envconfig:"USE_WEBHOOK"` // "true"/"false" строкой
	WebhookURL string `envconfig:"WEBHOOK_URL"`
	// WebhookSecret сверяется с заголовком X-Telegram-Bot-Api-Secret-Token
	WebhookSecret  string `envconfig:"WEBHOOK_SECRET"`
	PollingTimeout int    `envconfig:"POLLING_TIMEOUT" default:"30"`
}

// IsWebhookEnabled парсит строку UseWebhook в boolean
func (c *Config) IsWebhookEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(c.UseWebhook)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
