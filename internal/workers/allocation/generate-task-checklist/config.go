// internal/workers/allocation/generate-task-checklist/config.go
package generatetaskchecklist

import (
	"time"

	"dispatch-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// PersistByDefault writes generated checklists onto the job when the
	// process does not say otherwise.
	PersistByDefault bool
}

func LoadConfig(wc config.WorkerConfig) *Config {
	cfg := &Config{Timeout: 10 * time.Second, PersistByDefault: true}
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	return cfg
}
