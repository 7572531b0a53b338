// internal/common/camunda/worker.go
package camunda

import (
	"fmt"
	"sync"
	"time"

	"dispatch-workers/internal/common/config"
	"dispatch-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// WorkerPool opens one job worker per task type and closes them together.
type WorkerPool struct {
	client  zbc.Client
	log     logger.Logger
	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewWorkerPool(client zbc.Client, log logger.Logger) *WorkerPool {
	return &WorkerPool{
		client:  client,
		log:     log,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a worker for taskType. Disabled workers are skipped and a
// second Start for the same task type is an error.
func (p *WorkerPool) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) error {
	if !wcfg.Enabled {
		p.log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.workers[taskType]; exists {
		return fmt.Errorf("worker for %s already started", taskType)
	}

	p.workers[taskType] = p.client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Name(taskType + "-worker").
		Open()

	p.log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout":       config.GetDuration(wcfg.Timeout).String(),
	})
	return nil
}

// TaskTypes lists the task types with an open worker.
func (p *WorkerPool) TaskTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.workers))
	for t := range p.workers {
		out = append(out, t)
	}
	return out
}

// Close stops every worker, waiting for in-flight jobs up to timeout.
func (p *WorkerPool) Close(timeout time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var wg sync.WaitGroup
	for taskType, w := range p.workers {
		wg.Add(1)
		go func(taskType string, w worker.JobWorker) {
			defer wg.Done()
			w.Close()
			w.AwaitClose()
			p.log.Info("worker stopped", map[string]interface{}{"taskType": taskType})
		}(taskType, w)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		p.log.Warn("timed out waiting for workers to stop", map[string]interface{}{"timeout": timeout.String()})
	}
	p.workers = make(map[string]worker.JobWorker)
}
