// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml
// over it, expands ${VAR} placeholders and applies env overrides such as
// DATABASE_POSTGRES_HOST.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName("config." + env)
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads a single config file, skipping the environment overlay.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	paths := []string{".env", "../.env", "../../.env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if godotenv.Load(p) == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory to the go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		s, ok := v.Get(key).(string)
		if !ok || !strings.Contains(s, "$") {
			continue
		}
		if expanded := os.ExpandEnv(s); expanded != s && expanded != "" {
			v.Set(key, expanded)
		}
	}
}

// overrideEmptyConfig fills credentials that deployments commonly inject
// under short names rather than the nested viper keys.
func overrideEmptyConfig(cfg *Config) {
	envFallback(&cfg.Database.Postgres.User, "DB_USER")
	envFallback(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	envFallback(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
	envFallback(&cfg.Audit.SNSTopicARN, "ALLOCATION_SNS_TOPIC_ARN")
	envFallback(&cfg.Audit.AWSRegion, "AWS_REGION")
}

func envFallback(field *string, key string) {
	if *field != "" {
		return
	}
	if val := os.Getenv(key); val != "" {
		*field = val
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "dispatch-workers"
	}
	if cfg.App.HealthAddr == "" {
		cfg.App.HealthAddr = ":8080"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	for key, w := range cfg.Workers {
		if w.MaxJobsActive == 0 {
			w.MaxJobsActive = 5
		}
		if w.Timeout == 0 {
			w.Timeout = 30000
		}
		if w.MaxRetries == 0 {
			w.MaxRetries = 3
		}
		cfg.Workers[key] = w
	}

	a := &cfg.Allocation
	if a.HistoryLimit == 0 {
		a.HistoryLimit = 10
	}
	if a.HistoryCacheTTL == 0 {
		a.HistoryCacheTTL = 10 * time.Minute
	}
	if a.TransactMaxRetries == 0 {
		a.TransactMaxRetries = 5
	}
	if a.TransactBaseDelay == 0 {
		a.TransactBaseDelay = 50 * time.Millisecond
	}
	if a.Store == "" {
		a.Store = StorePostgres
	}

	if cfg.Audit.WriteTimeout == 0 {
		cfg.Audit.WriteTimeout = 3 * time.Second
	}
	if cfg.Audit.ElasticsearchIndex == "" {
		cfg.Audit.ElasticsearchIndex = "job-allocations"
	}
	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}
	if cfg.RegistryPath == "" {
		cfg.RegistryPath = "configs/activity-registry.json"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	switch cfg.Allocation.Store {
	case StorePostgres:
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("allocation.store must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.Allocation.Store)
	}

	if cfg.Audit.PostgresEnabled && cfg.Allocation.Store != StorePostgres && cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("audit.postgres_enabled requires database.postgres.host")
	}
	if cfg.Audit.ElasticsearchEnabled && cfg.Database.Elasticsearch.GetURL() == "" {
		return fmt.Errorf("audit.elasticsearch_enabled requires database.elasticsearch.addresses or url")
	}
	if cfg.Audit.SNSEnabled && cfg.Audit.SNSTopicARN == "" {
		return fmt.Errorf("audit.sns_enabled requires audit.sns_topic_arn")
	}
	if cfg.Allocation.HistoryLimit < 0 || cfg.Allocation.TransactMaxRetries < 0 {
		return fmt.Errorf("allocation limits must not be negative")
	}
	return nil
}

// GetDuration converts a millisecond config value.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig returns the worker's settings, or the defaults when the
// worker has no section.
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if w, ok := cfg.Workers[workerName]; ok {
		return w
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if w, ok := cfg.Workers[workerName]; ok {
		return w.Enabled
	}
	return true
}
