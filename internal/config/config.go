// Package config provides configuration loading and validation for the bot.
// Values come from defaults, an optional config.yaml, and BOT_* environment
// variables, in that order of precedence.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Reply modes supported by the bot. The mode is fixed at startup and selects
// which reply generator the message pipeline is built with.
const (
	ModeStatic = "static"
	ModeGemini = "gemini"
)

// Variant-dependent rate-limit defaults: the generative bot replies on a
// short cadence, the canned-tip bot on a long one.
const (
	defaultGeminiReplyInterval = 3 * time.Second
	defaultStaticReplyInterval = time.Hour
)

// Config holds all application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	AI        AIConfig        `mapstructure:"ai"`
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log verbosity and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the transport credential.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
}

// AIConfig configures the generative reply strategy. APIKey is required only
// when Mode is "gemini"; Load enforces that.
type AIConfig struct {
	Mode            string        `mapstructure:"mode"              validate:"oneof=static gemini"`
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"             validate:"required"`
	Temperature     float32       `mapstructure:"temperature"       validate:"min=0,max=2"`
	MaxOutputTokens int32         `mapstructure:"max_output_tokens" validate:"min=1"`
	Timeout         time.Duration `mapstructure:"timeout"           validate:"min=1s,max=10m"`
}

// BotConfig holds the responder pipeline settings.
type BotConfig struct {
	AllowedUserIDs    string        `mapstructure:"allowed_user_ids"`
	MinReplyInterval  time.Duration `mapstructure:"min_reply_interval"`
	RestrictedMessage string        `mapstructure:"restricted_message" validate:"required"`
}

// DatabaseConfig holds the message archive settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// TaskConfig configures a single scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// Load reads configuration from defaults, an optional config.yaml in the
// working directory, and BOT_* environment variables, then validates it.
// A missing config file is not an error; a missing required credential is.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// The rate-limit default depends on the reply mode, so it cannot be a
	// plain viper default.
	if cfg.Bot.MinReplyInterval <= 0 {
		if cfg.AI.Mode == ModeStatic {
			cfg.Bot.MinReplyInterval = defaultStaticReplyInterval
		} else {
			cfg.Bot.MinReplyInterval = defaultGeminiReplyInterval
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.AI.Mode == ModeGemini && cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("ai.api_key is required when ai.mode is %q", ModeGemini)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", false)

	// Credentials default to empty so the keys are known to viper and can be
	// supplied through BOT_* environment variables alone.
	v.SetDefault("telegram.token", "")

	v.SetDefault("ai.mode", ModeGemini)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.max_output_tokens", 180)
	v.SetDefault("ai.timeout", 2*time.Minute)

	v.SetDefault("bot.allowed_user_ids", "")
	v.SetDefault("bot.min_reply_interval", time.Duration(0))
	v.SetDefault("bot.restricted_message",
		"Эта функция доступна только участницам группы поддержки.")

	v.SetDefault("database.path", "storage.db")

	v.SetDefault("scheduler.tasks.archive_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.archive_maintenance.schedule", "0 0 4 * * *")
}

// ParseAllowList parses a comma-separated list of participant IDs into a set.
// Whitespace around entries is ignored and non-numeric entries are silently
// dropped. An empty string yields an empty set.
func ParseAllowList(raw string) map[int64]struct{} {
	ids := make(map[int64]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids[id] = struct{}{}
	}
	return ids
}
