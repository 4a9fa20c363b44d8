package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all runtime settings. Values come from the environment,
// optionally seeded from a .env file in the working directory.
type Config struct {
	DiscordToken string   `env:"DISCORD_TOKEN,required"`
	StoragePath  string   `env:"STORAGE_PATH" envDefault:"datastore.json"`
	Owners       []string `env:"BOT_OWNERS" envSeparator:","`
	EmbedColor   int      `env:"EMBED_COLOR" envDefault:"9721806"` // 0x9457CE

	// Reconciliation loop cadence: pause between guilds within a pass,
	// and between full passes.
	VerifyStepInterval time.Duration `env:"VERIFY_STEP_INTERVAL" envDefault:"500ms"`
	VerifyPassInterval time.Duration `env:"VERIFY_PASS_INTERVAL" envDefault:"60s"`

	FFmpegPath        string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	InitSlashCommands bool   `env:"INIT_SLASH_COMMANDS" envDefault:"true"`

	LogFile  string `env:"LOG_FILE"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// New loads the configuration from .env and the process environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// IsOwner reports whether the given user ID is listed as a bot owner.
func (c *Config) IsOwner(userID string) bool {
	for _, id := range c.Owners {
		if id == userID {
			return true
		}
	}
	return false
}
