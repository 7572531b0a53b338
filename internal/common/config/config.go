// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Allocation    AllocationConfig        `mapstructure:"allocation"`
	Audit         AuditConfig             `mapstructure:"audit"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	RegistryPath  string                  `mapstructure:"registry_path"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HealthAddr  string `mapstructure:"health_addr"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
}

// GetURL prefers the single url field and falls back to the first address.
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the settings every worker shares.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// AllocationConfig tunes the matching engine and its record store.
type AllocationConfig struct {
	HistoryLimit       int           `mapstructure:"history_limit"`
	HistoryCacheTTL    time.Duration `mapstructure:"history_cache_ttl"`
	TransactMaxRetries int           `mapstructure:"transact_max_retries"`
	TransactBaseDelay  time.Duration `mapstructure:"transact_base_delay"`
	// Store selects the record store: "postgres" or "memory".
	Store string `mapstructure:"store"`
}

// AuditConfig enables the allocation audit sinks. Every sink is optional.
type AuditConfig struct {
	PostgresEnabled      bool   `mapstructure:"postgres_enabled"`
	ElasticsearchEnabled bool   `mapstructure:"elasticsearch_enabled"`
	ElasticsearchIndex   string `mapstructure:"elasticsearch_index"`
	SNSEnabled           bool   `mapstructure:"sns_enabled"`
	SNSTopicARN          string `mapstructure:"sns_topic_arn"`
	AWSRegion            string `mapstructure:"aws_region"`
	// WriteTimeout bounds one allocation event fan-out across all sinks.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
