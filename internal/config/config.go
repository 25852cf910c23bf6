package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Storage   StorageConfig
	Speech    SpeechConfig
	Vision    VisionConfig
	LLM       LLMConfig
	Search    SearchConfig
	Telegram  TelegramConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConns       int32
	MigrationsPath string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NATSConfig is optional: an empty URL disables turn events.
type NATSConfig struct {
	URL string
}

// StorageConfig selects the exchange record backend.
type StorageConfig struct {
	Driver    string // redis or postgres
	Container string
}

type SpeechConfig struct {
	Key        string
	Region     string
	Language   string
	Endpoint   string
	FFmpegPath string
}

type VisionConfig struct {
	Key      string
	Endpoint string
}

type LLMConfig struct {
	Provider   string // azure or openai
	Endpoint   string
	Key        string
	APIVersion string
	Model      string
	MaxTokens  int
}

type SearchConfig struct {
	SerpAPIKey string
	Endpoint   string
	Engine     string
	Count      int
}

type TelegramConfig struct {
	Token       string
	APIEndpoint string
}

type RateLimitConfig struct {
	Enabled   bool
	MaxReqs   int
	WindowSec int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

const (
	StorageRedis    = "redis"
	StoragePostgres = "postgres"

	LLMProviderAzure  = "azure"
	LLMProviderOpenAI = "openai"
)

func Load() (*Config, error) {
	k := koanf.New(".")

	// .env is optional; its keys are mapped the same way as env vars
	_ = k.Load(file.Provider(".env"), dotenv.ParserEnv("", ".", envKey))

	// Environment variables override .env
	err := k.Load(env.Provider("", ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	return fromKoanf(k), nil
}

// envKey maps OPENAI_API_VERSION to openai.api.version.
func envKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", "."))
}

func fromKoanf(k *koanf.Koanf) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		DB: DBConfig{
			Host:           k.String("db.host"),
			Port:           k.Int("db.port"),
			User:           k.String("db.user"),
			Password:       k.String("db.password"),
			Name:           k.String("db.name"),
			SSLMode:        k.String("db.sslmode"),
			MaxConns:       int32(k.Int("db.max.conns")),
			MigrationsPath: k.String("db.migrations.path"),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		Storage: StorageConfig{
			Driver:    k.String("storage.driver"),
			Container: k.String("storage.container"),
		},
		Speech: SpeechConfig{
			Key:        k.String("speech.key"),
			Region:     k.String("speech.region"),
			Language:   k.String("speech.language"),
			Endpoint:   k.String("speech.endpoint"),
			FFmpegPath: k.String("ffmpeg.path"),
		},
		Vision: VisionConfig{
			Key:      k.String("cv.key"),
			Endpoint: k.String("cv.endpoint"),
		},
		LLM: LLMConfig{
			Provider:   k.String("openai.provider"),
			Endpoint:   k.String("openai.endpoint"),
			Key:        k.String("openai.key"),
			APIVersion: k.String("openai.api.version"),
			Model:      k.String("openai.model"),
			MaxTokens:  k.Int("openai.max.tokens"),
		},
		Search: SearchConfig{
			SerpAPIKey: k.String("serp.api.key"),
			Endpoint:   k.String("serp.api.endpoint"),
			Engine:     k.String("serp.api.engine"),
			Count:      k.Int("serp.api.count"),
		},
		Telegram: TelegramConfig{
			Token:       k.String("telegram.token"),
			APIEndpoint: k.String("telegram.api.endpoint"),
		},
		RateLimit: RateLimitConfig{
			Enabled:   k.Bool("ratelimit.enabled"),
			MaxReqs:   k.Int("ratelimit.max.reqs"),
			WindowSec: k.Int("ratelimit.window.sec"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	if origins := k.String("cors.allowed.origins"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, o)
			}
		}
	}

	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "travel"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "travel_assistant"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 10
	}
	if cfg.DB.MigrationsPath == "" {
		cfg.DB.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageRedis
	}
	if cfg.Storage.Container == "" {
		cfg.Storage.Container = "travel-assistant"
	}
	if cfg.Speech.Language == "" {
		cfg.Speech.Language = "en-US"
	}
	if cfg.Speech.FFmpegPath == "" {
		cfg.Speech.FFmpegPath = "ffmpeg"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = LLMProviderAzure
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "o3-mini"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 100000
	}
	if cfg.Search.Endpoint == "" {
		cfg.Search.Endpoint = "https://serpapi.com/search"
	}
	if cfg.Search.Engine == "" {
		cfg.Search.Engine = "google"
	}
	if cfg.Search.Count == 0 {
		cfg.Search.Count = 5
	}
	if cfg.Telegram.APIEndpoint == "" {
		cfg.Telegram.APIEndpoint = "https://api.telegram.org/bot%s/%s"
	}
	if cfg.RateLimit.MaxReqs == 0 {
		cfg.RateLimit.MaxReqs = 60
	}
	if cfg.RateLimit.WindowSec == 0 {
		cfg.RateLimit.WindowSec = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

