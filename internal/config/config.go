package config

import (
	"encoding/json"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Database *dbConfig
	Service  *svcConfig
	Runtime  *runtimeConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"sqlite"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"testbed.db"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass" json:"-"`
}

type svcConfig struct {
	Address        string `envconfig:"TESTBED_ADDRESS" default:":8001"`
	MetricsAddress string `envconfig:"TESTBED_METRICS_ADDRESS" default:":8080"`
	BaseUrl        string `envconfig:"TESTBED_BASE_URL" default:"http://localhost:8001"`
	LogLevel       string `envconfig:"TESTBED_LOG_LEVEL" default:"info"`
	CorsOrigins    string `envconfig:"TESTBED_CORS_ORIGINS" default:"*"`
}

// runtimeConfig covers the external collaborators and the registry
// retention policy.
type runtimeConfig struct {
	ThreadStoreURL   string        `envconfig:"TESTBED_THREAD_STORE_URL" default:"http://localhost:2024"`
	LLMEndpoint      string        `envconfig:"TESTBED_LLM_ENDPOINT" default:"https://api.openai.com/v1"`
	LLMAPIKey        string        `envconfig:"TESTBED_LLM_API_KEY" default:"" json:"-"`
	LLMModel         string        `envconfig:"TESTBED_LLM_MODEL" default:"gpt-4o-mini"`
	DefaultMaxTurns  int           `envconfig:"TESTBED_DEFAULT_MAX_TURNS" default:"10"`
	JobRetention     time.Duration `envconfig:"TESTBED_JOB_RETENTION" default:"1h"`
	SessionRetention time.Duration `envconfig:"TESTBED_SESSION_RETENTION" default:"24h"`
	SweepInterval    time.Duration `envconfig:"TESTBED_SWEEP_INTERVAL" default:"10m"`
}

// New processes the environment into a Config. Unlike the usual
// singleton pattern it returns a fresh value each time so tests can
// tweak fields without leaking between suites.
func New() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewDefault returns the config produced by an empty environment.
func NewDefault() *Config {
	return &Config{
		// shared cache so every pooled connection sees the same in-memory db
		Database: &dbConfig{Type: "sqlite", Name: "file::memory:?cache=shared"},
		Service:  &svcConfig{Address: ":8001", MetricsAddress: ":8080", LogLevel: "info", CorsOrigins: "*"},
		Runtime: &runtimeConfig{
			ThreadStoreURL:   "http://localhost:2024",
			LLMModel:         "gpt-4o-mini",
			DefaultMaxTurns:  10,
			JobRetention:     time.Hour,
			SessionRetention: 24 * time.Hour,
			SweepInterval:    10 * time.Minute,
		},
	}
}

func (c *Config) String() string {
	val, err := json.Marshal(c)
	if err != nil {
		return "config: failed to marshal"
	}
	return string(val)
}
