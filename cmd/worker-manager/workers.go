// cmd/worker-manager/workers.go
package main

import (
	"fmt"

	"dispatch-workers/internal/allocation"
	"dispatch-workers/internal/common/camunda"
	"dispatch-workers/internal/common/config"
	"dispatch-workers/internal/workers/jobutil"
	"dispatch-workers/pkg/registry"

	acc "dispatch-workers/internal/workers/allocation/accept-assignment"
	adv "dispatch-workers/internal/workers/allocation/advance-job-status"
	alloc "dispatch-workers/internal/workers/allocation/allocate-employees"
	dec "dispatch-workers/internal/workers/allocation/decline-assignment"
	gtc "dispatch-workers/internal/workers/allocation/generate-task-checklist"
	rank "dispatch-workers/internal/workers/allocation/rank-candidates"
	rea "dispatch-workers/internal/workers/allocation/reassign-task"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// registerWorkers opens one job worker per allocation task type. Each
// handler validates its variables against the registry's input schema.
func registerWorkers(pool *camunda.WorkerPool, cfg *config.Config, reg *registry.ActivityRegistry,
	service *allocation.Service, deps jobutil.Deps) error {
	handlers := map[string]func(wc config.WorkerConfig, schema map[string]interface{}) worker.JobHandler{
		rank.TaskType: func(wc config.WorkerConfig, schema map[string]interface{}) worker.JobHandler {
			return rank.NewHandler(rank.LoadConfig(wc), service, schema, deps).Handle
		},
		gtc.TaskType: func(wc config.WorkerConfig, schema map[string]interface{}) worker.JobHandler {
			return gtc.NewHandler(gtc.LoadConfig(wc), service, schema, deps).Handle
		},
		alloc.TaskType: func(wc config.WorkerConfig, schema map[string]interface{}) worker.JobHandler {
			return alloc.NewHandler(alloc.LoadConfig(wc), service, schema, deps).Handle
		},
		acc.TaskType: func(wc config.WorkerConfig, schema map[string]interface{}) worker.JobHandler {
			return acc.NewHandler(acc.LoadConfig(wc), service, schema, deps).Handle
		},
		dec.TaskType: func(wc config.WorkerConfig, schema map[string]interface{}) worker.JobHandler {
			return dec.NewHandler(dec.LoadConfig(wc), service, schema, deps).Handle
		},
		rea.TaskType: func(wc config.WorkerConfig, schema map[string]interface{}) worker.JobHandler {
			return rea.NewHandler(rea.LoadConfig(wc), service, schema, deps).Handle
		},
		adv.TaskType: func(wc config.WorkerConfig, schema map[string]interface{}) worker.JobHandler {
			return adv.NewHandler(adv.LoadConfig(wc), service, schema, deps).Handle
		},
	}

	for _, taskType := range registry.TaskTypes {
		build, ok := handlers[taskType]
		if !ok {
			return fmt.Errorf("no handler for task type %s", taskType)
		}
		schema := reg.InputSchema(taskType)
		if schema == nil {
			return fmt.Errorf("activity registry has no input schema for %s", taskType)
		}
		wc := config.GetWorkerConfig(cfg, taskType)
		if err := pool.Start(taskType, wc, build(wc, schema)); err != nil {
			return err
		}
	}
	return nil
}
