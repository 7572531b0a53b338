// internal/workers/allocation/rank-candidates/config.go
package rankcandidates

import (
	"time"

	"dispatch-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// MaxCandidates caps the returned ranking when the job asks for no
	// smaller limit. Zero returns every employee.
	MaxCandidates        int
	DefaultAvailableOnly bool
}

func LoadConfig(wc config.WorkerConfig) *Config {
	cfg := &Config{Timeout: 30 * time.Second}
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	return cfg
}
