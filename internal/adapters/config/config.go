package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"minerva/pkg/errors"
)

type Config struct {
	App           AppConfig
	API           APIConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	AI            AIConfig
	Agents        AgentsConfig
	ErrorTracking ErrorTrackingConfig
	Metrics       MetricsConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"minerva"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type APIConfig struct {
	Port int `envconfig:"API_PORT" default:"8080"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled reports whether a Redis endpoint was configured. The intent cache
// is optional; everything works without it.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS"`
}

// Enabled reports whether event publishing was configured.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type AIConfig struct {
	OpenAIKey         string        `envconfig:"OPENAI_API_KEY" required:"true"`
	BaseURL           string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	RequestTimeout    time.Duration `envconfig:"OPENAI_REQUEST_TIMEOUT" default:"60s"`
	RequestsPerMinute float64       `envconfig:"OPENAI_REQUESTS_PER_MINUTE" default:"500"`
	Burst             int           `envconfig:"OPENAI_BURST" default:"20"`
}

// AgentsConfig carries per-agent model settings. Each specialization uses
// its own model and temperature; the resolver runs on the cheapest model
// since classification is a constrained task.
type AgentsConfig struct {
	ResolverModel       string  `envconfig:"RESOLVER_MODEL" default:"gpt-4o-mini"`
	ResolverTemperature float64 `envconfig:"RESOLVER_TEMPERATURE" default:"0.1"`

	CollectorModel       string  `envconfig:"COLLECTOR_MODEL" default:"gpt-4o"`
	CollectorTemperature float64 `envconfig:"COLLECTOR_TEMPERATURE" default:"0.2"`
	CollectorMaxTokens   int     `envconfig:"COLLECTOR_MAX_TOKENS" default:"2000"`

	ReporterModel       string  `envconfig:"REPORTER_MODEL" default:"gpt-4o"`
	ReporterTemperature float64 `envconfig:"REPORTER_TEMPERATURE" default:"0.5"`
	ReporterMaxTokens   int     `envconfig:"REPORTER_MAX_TOKENS" default:"4000"`

	QAModel       string  `envconfig:"QA_MODEL" default:"gpt-4o"`
	QATemperature float64 `envconfig:"QA_TEMPERATURE" default:"0.3"`
	QAMaxTokens   int     `envconfig:"QA_MAX_TOKENS" default:"2000"`

	IntentCacheTTL time.Duration `envconfig:"INTENT_CACHE_TTL" default:"10m"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads configuration from the environment, honoring a local .env file
// when present.
func Load() (*Config, error) {
	// .env is optional; real deployments set variables directly
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "process env config")
	}

	return &cfg, nil
}
