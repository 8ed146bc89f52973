package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	configPathEnv    = "LISTING_RADAR_CONFIG"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
	databaseDSNEnv   = "DATABASE_DSN"
	redisAddrEnv     = "REDIS_ADDR"
	ledgerBackendEnv = "LEDGER_BACKEND"
	topicsJSONEnv    = "TOPICS_JSON"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Scraper       ScraperConfig      `yaml:"scraper"`
	Storage       StorageConfig      `yaml:"storage"`
	Notifications NotificationConfig `yaml:"notifications"`
	Topics        []TopicConfig      `yaml:"topics"`

	// TopicsJSON carries the admin-published topic document; env-only, it
	// overrides the static topics list when present.
	TopicsJSON string `yaml:"-"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SchedulerConfig defines when orchestration passes run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// ScraperConfig tunes pacing around the source site and the message channel.
// Delays are duration strings ("2s", "500ms").
type ScraperConfig struct {
	FetchTimeout  string `yaml:"fetchTimeout"`
	PrefetchDelay string `yaml:"prefetchDelay"`
	MessagePause  string `yaml:"messagePause"`
}

// FetchTimeoutDuration parses the fetch timeout, falling back to 30s.
func (s ScraperConfig) FetchTimeoutDuration() time.Duration {
	return parseDuration(s.FetchTimeout, 30*time.Second)
}

// PrefetchDelayDuration parses the pre-fetch delay, falling back to 2s.
func (s ScraperConfig) PrefetchDelayDuration() time.Duration {
	return parseDuration(s.PrefetchDelay, 2*time.Second)
}

// MessagePauseDuration parses the inter-message pause, falling back to 1s.
func (s ScraperConfig) MessagePauseDuration() time.Duration {
	return parseDuration(s.MessagePause, time.Second)
}

// StorageConfig selects and parameterizes the history backend.
type StorageConfig struct {
	// Backend is one of "file", "postgres", "redis".
	Backend  string      `yaml:"backend"`
	DataDir  string      `yaml:"dataDir"`
	FlagPath string      `yaml:"flagPath"`
	DSN      string      `yaml:"dsn"`
	Redis    RedisConfig `yaml:"redis"`
}

// RedisConfig describes the Redis connection for the redis backend.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"keyPrefix"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// TopicConfig is one saved search as configured.
type TopicConfig struct {
	Topic    string `yaml:"topic"`
	URL      string `yaml:"url"`
	Disabled bool   `yaml:"disabled"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Storage.Redis.Addr = v
	}
	if v := os.Getenv(ledgerBackendEnv); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv(topicsJSONEnv); v != "" {
		c.TopicsJSON = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Scraper.FetchTimeout != "" {
		base.Scraper.FetchTimeout = override.Scraper.FetchTimeout
	}
	if override.Scraper.PrefetchDelay != "" {
		base.Scraper.PrefetchDelay = override.Scraper.PrefetchDelay
	}
	if override.Scraper.MessagePause != "" {
		base.Scraper.MessagePause = override.Scraper.MessagePause
	}

	if override.Storage.Backend != "" {
		base.Storage.Backend = override.Storage.Backend
	}
	if override.Storage.DataDir != "" {
		base.Storage.DataDir = override.Storage.DataDir
	}
	if override.Storage.FlagPath != "" {
		base.Storage.FlagPath = override.Storage.FlagPath
	}
	if override.Storage.DSN != "" {
		base.Storage.DSN = override.Storage.DSN
	}
	if override.Storage.Redis.Addr != "" {
		base.Storage.Redis = override.Storage.Redis
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if len(override.Topics) > 0 {
		base.Topics = override.Topics
	}

	return base
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("config: invalid duration %q, using %s", value, fallback)
		return fallback
	}
	return d
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{CronExpression: "*/30 * * * *", Timezone: defaultTimezone, location: tz},
		Scraper: ScraperConfig{
			FetchTimeout:  "30s",
			PrefetchDelay: "2s",
			MessagePause:  "1s",
		},
		Storage: StorageConfig{
			Backend:  "file",
			DataDir:  "data",
			FlagPath: "push_me",
			Redis:    RedisConfig{Addr: "localhost:6379"},
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
	}
}
