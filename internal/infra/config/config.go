package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL  string
	DiscordToken string
	RedisURL     string // opcional: sink central de logs/errores
	OperatorID   string // usuario que recibe los DMs de fallos
	HTTPAddr     string // opcional, default :8080

	ShardID       int
	ShardCount    int
	OwnerShard    int // corre llamadas y RSS
	ReminderShard int // corre los reminders

	CommandPrefix string
	DefaultLocale string

	BingMapsKey string
	DarkSkyKey  string

	LogLevel  string
	LogPretty bool

	TickInterval        time.Duration
	InactivityThreshold time.Duration
	MenuTimeout         time.Duration
	RSSMinute           int
}

func Load() Config {
	get := func(k string, req bool) string {
		v := os.Getenv(k)
		if v == "" && req {
			log.Fatalf("faltante env %s", k)
		}
		return v
	}
	num := func(k string, def int) int {
		v := get(k, false)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("env %s inválida: %v", k, err)
		}
		return n
	}
	dur := func(k string, def time.Duration) time.Duration {
		v := get(k, false)
		if v == "" {
			return def
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("env %s inválida: %v", k, err)
		}
		return d
	}

	cfg := Config{
		DatabaseURL:  get("DATABASE_URL", true),
		DiscordToken: get("DISCORD_BOT_TOKEN", true),
		RedisURL:     get("REDIS_URL", false),
		OperatorID:   get("OPERATOR_USER_ID", false),
		HTTPAddr:     get("HTTP_ADDR", false), // puede quedar vacío

		ShardID:       num("SHARD_ID", 0),
		ShardCount:    num("SHARD_COUNT", 1),
		OwnerShard:    num("OWNER_SHARD", 0),
		ReminderShard: num("REMINDER_SHARD", 0),

		CommandPrefix: get("COMMAND_PREFIX", false),
		DefaultLocale: get("DEFAULT_LOCALE", false),

		BingMapsKey: get("BING_MAPS_KEY", false),
		DarkSkyKey:  get("DARKSKY_KEY", false),

		LogLevel:  get("LOG_LEVEL", false),
		LogPretty: get("LOG_PRETTY", false) == "true",

		TickInterval:        dur("TICK_INTERVAL", 10*time.Second),
		InactivityThreshold: dur("INACTIVITY_THRESHOLD", 5*time.Minute),
		MenuTimeout:         dur("MENU_TIMEOUT", 2*time.Minute),
		RSSMinute:           num("RSS_MINUTE", 0),
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.CommandPrefix == "" {
		cfg.CommandPrefix = "!"
	}
	if cfg.DefaultLocale == "" {
		cfg.DefaultLocale = "en-US"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ShardCount < 1 {
		cfg.ShardCount = 1
	}
	return cfg
}
