package config

import (
	"fmt"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Config holds everything the bot needs to run, loaded from the environment.
type Config struct {
	Address     string `env:"ADDRESS" envDefault:":8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	TelegramBotToken      string `env:"TELEGRAM_BOT_TOKEN,required"`
	TelegramWebhookSecret string `env:"TELEGRAM_WEBHOOK_SECRET"` // optional; checked against X-Telegram-Bot-Api-Secret-Token when set

	OpenAIAPIKey string `env:"OPENAI_API_KEY,required"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4.1"`

	// VisionTimeoutSeconds bounds one extraction call; a timeout is a
	// recoverable failure, never a hang.
	VisionTimeoutSeconds int `env:"VISION_TIMEOUT_SECONDS" envDefault:"90"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // text | json
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	// Missing .env is fine in deployed environments; real env vars win.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
