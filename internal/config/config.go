// Package config provides configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Defaults
const (
	DefaultDBPort            = 5432
	DefaultTelegramAPIURL    = "https://api.telegram.org"
	DefaultPollInterval      = 60
	DefaultCardBaseURL       = "http://localhost:5000"
	DefaultServerPort        = 3000
	DefaultTrackFile         = "last_sent_id.json"
	DefaultRateLimitPerMin   = 120
	DefaultRateLimitBurst    = 20
	DefaultSendAllLimit      = 10
	DefaultWatermarkRedisKey = "cvfeed:last_sent_id"
)

// Config holds every setting of the cvfeed commands. Values come from the
// environment (optionally a config file) and bound cobra flags.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Notifier  NotifierConfig  `mapstructure:"notifier"`
	Server    ServerConfig    `mapstructure:"server"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

// DatabaseConfig describes the Postgres connection. URL wins over the
// individual parts when set.
type DatabaseConfig struct {
	URL      string `mapstructure:"url" env:"DATABASE_URL"`
	Host     string `mapstructure:"host" env:"DB_HOST" validate:"required_without=URL"`
	Port     int    `mapstructure:"port" env:"DB_PORT" validate:"min=1,max=65535"`
	Name     string `mapstructure:"name" env:"DB_NAME" validate:"required_without=URL"`
	User     string `mapstructure:"user" env:"DB_USER" validate:"required_without=URL"`
	Password string `mapstructure:"password" env:"DB_PASSWORD"`
}

// TelegramConfig holds the bot credentials and API endpoint.
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token" env:"TELEGRAM_BOT_TOKEN" validate:"required"`
	ChatID   string `mapstructure:"chat_id" env:"TELEGRAM_CHAT_ID" validate:"required"`
	APIURL   string `mapstructure:"api_url" env:"TELEGRAM_API_URL" validate:"required,url"`
}

// NotifierConfig controls the polling loop and card links.
type NotifierConfig struct {
	PollIntervalSeconds int    `mapstructure:"poll_interval" env:"POLL_INTERVAL" validate:"min=1"`
	AutoSend            bool   `mapstructure:"auto_send" env:"AUTO_SEND_ENABLED"`
	CardBaseURL         string `mapstructure:"card_base_url" env:"CARD_BASE_URL" validate:"required,url"`
	TrackFile           string `mapstructure:"track_file" env:"TRACK_FILE" validate:"required"`
	RedisURL            string `mapstructure:"redis_url" env:"WATERMARK_REDIS_URL" validate:"omitempty,url"`
	RedisKey            string `mapstructure:"redis_key" env:"WATERMARK_REDIS_KEY" validate:"required"`
}

// ServerConfig configures the presentation server.
type ServerConfig struct {
	Port int `mapstructure:"port" env:"PORT" validate:"min=1,max=65535"`
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	Enabled   bool `mapstructure:"enabled" env:"RATE_LIMIT_ENABLED"`
	PerMinute int  `mapstructure:"per_minute" env:"RATE_LIMIT_PER_MINUTE" validate:"min=1"`
	Burst     int  `mapstructure:"burst" env:"RATE_LIMIT_BURST" validate:"min=1"`
}

// LogConfig selects the logger encoding and level.
type LogConfig struct {
	JSON  bool `mapstructure:"json" env:"LOG_JSON"`
	Debug bool `mapstructure:"debug" env:"LOG_DEBUG"`
}

// binding ties a viper key to its environment variable and default.
type binding struct {
	key      string
	env      string
	def      any
	kind     reflect.Kind
	nullable bool
}

var bindings = []binding{
	{key: "database.url", env: "DATABASE_URL", kind: reflect.String},
	{key: "database.host", env: "DB_HOST", kind: reflect.String},
	{key: "database.port", env: "DB_PORT", def: DefaultDBPort, kind: reflect.Int},
	{key: "database.name", env: "DB_NAME", kind: reflect.String},
	{key: "database.user", env: "DB_USER", kind: reflect.String},
	{key: "database.password", env: "DB_PASSWORD", kind: reflect.String},
	{key: "telegram.bot_token", env: "TELEGRAM_BOT_TOKEN", kind: reflect.String},
	{key: "telegram.chat_id", env: "TELEGRAM_CHAT_ID", kind: reflect.String},
	{key: "telegram.api_url", env: "TELEGRAM_API_URL", def: DefaultTelegramAPIURL, kind: reflect.String},
	{key: "notifier.poll_interval", env: "POLL_INTERVAL", def: DefaultPollInterval, kind: reflect.Int},
	{key: "notifier.auto_send", env: "AUTO_SEND_ENABLED", def: false, kind: reflect.Bool},
	{key: "notifier.card_base_url", env: "CARD_BASE_URL", def: DefaultCardBaseURL, kind: reflect.String},
	{key: "notifier.track_file", env: "TRACK_FILE", def: DefaultTrackFile, kind: reflect.String},
	{key: "notifier.redis_url", env: "WATERMARK_REDIS_URL", kind: reflect.String},
	{key: "notifier.redis_key", env: "WATERMARK_REDIS_KEY", def: DefaultWatermarkRedisKey, kind: reflect.String},
	{key: "server.port", env: "PORT", def: DefaultServerPort, kind: reflect.Int},
	{key: "ratelimit.enabled", env: "RATE_LIMIT_ENABLED", def: true, kind: reflect.Bool},
	{key: "ratelimit.per_minute", env: "RATE_LIMIT_PER_MINUTE", def: DefaultRateLimitPerMin, kind: reflect.Int},
	{key: "ratelimit.burst", env: "RATE_LIMIT_BURST", def: DefaultRateLimitBurst, kind: reflect.Int},
	{key: "log.json", env: "LOG_JSON", def: false, kind: reflect.Bool},
	{key: "log.debug", env: "LOG_DEBUG", def: false, kind: reflect.Bool},
}

// NewViper returns a viper instance with every environment variable bound
// and every default registered. Callers may bind flags or a config file on
// top of it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	for _, b := range bindings {
		// BindEnv only fails without a key
		_ = v.BindEnv(b.key, b.env)
		if b.def != nil {
			v.SetDefault(b.key, b.def)
		}
	}
	return v
}

// Problem is one configuration diagnostic.
type Problem struct {
	Env     string
	Message string
}

// ValidationError lists every configuration problem found, naming the
// environment variables involved.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, fmt.Sprintf("%s %s", p.Env, p.Message))
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

// Load reads the configuration from v. Numbers and booleans that cannot be
// parsed are reported together as a ValidationError. Required sections are
// checked separately with RequireDatabase and RequireTelegram.
func Load(v *viper.Viper) (*Config, error) {
	var problems []Problem
	for _, b := range bindings {
		raw := v.Get(b.key)
		if raw == nil {
			continue
		}
		if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
			// Treat empty numeric and boolean variables as unset
			if b.kind != reflect.String && b.def != nil {
				v.Set(b.key, b.def)
			}
			continue
		}
		switch b.kind {
		case reflect.Int:
			if _, err := cast.ToIntE(raw); err != nil {
				problems = append(problems, Problem{Env: b.env, Message: fmt.Sprintf("must be an integer, got %q", fmt.Sprint(raw))})
			}
		case reflect.Bool:
			if _, err := cast.ToBoolE(raw); err != nil {
				problems = append(problems, Problem{Env: b.env, Message: fmt.Sprintf("must be a boolean, got %q", fmt.Sprint(raw))})
			}
		}
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.Database.URL = strings.TrimSpace(cfg.Database.URL)

	if err := check(struct {
		Notifier  NotifierConfig
		Server    ServerConfig
		RateLimit RateLimitConfig
	}{cfg.Notifier, cfg.Server, cfg.RateLimit}); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RequireDatabase checks that a connection string can be built.
func (c *Config) RequireDatabase() error {
	return check(c.Database)
}

// RequireTelegram checks that the bot credentials are present.
func (c *Config) RequireTelegram() error {
	return check(c.Telegram)
}

// DSN returns the connection string, assembling it from the parts when URL
// is unset.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	} else {
		u.User = url.User(d.User)
	}
	return u.String()
}

// PollInterval is the sleep between notifier cycles.
func (n NotifierConfig) PollInterval() time.Duration {
	return time.Duration(n.PollIntervalSeconds) * time.Second
}

// Addr is the listen address of the presentation server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("env"); name != "" {
			return name
		}
		return field.Name
	})
	return v
}

func check(section any) error {
	err := validate.Struct(section)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate configuration: %w", err)
	}

	problems := make([]Problem, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, Problem{Env: fe.Field(), Message: describe(fe)})
	}
	return &ValidationError{Problems: problems}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "is required when DATABASE_URL is not set"
	case "url":
		return fmt.Sprintf("must be a URL, got %q", fmt.Sprint(fe.Value()))
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
