// internal/workers/allocation/allocate-employees/config.go
package allocateemployees

import (
	"time"

	"dispatch-workers/internal/common/config"
	"dispatch-workers/internal/models"
)

type Config struct {
	Timeout       time.Duration
	DefaultMethod string
	// DefaultAllocatedBy is recorded on the audit event when the process
	// does not name an administrator.
	DefaultAllocatedBy string
}

func LoadConfig(wc config.WorkerConfig) *Config {
	cfg := &Config{
		Timeout:            30 * time.Second,
		DefaultMethod:      models.AllocationMethodAuto,
		DefaultAllocatedBy: "system",
	}
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	return cfg
}
