package services

import (
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// MaintenanceService runs the periodic memory sweep: expired records are
// pruned for every owner on a cron schedule. Lazy pruning on mutation
// keeps correctness; the sweep keeps idle owners from holding dead
// records until their next write.
type MaintenanceService struct {
	engine    *MemoryEngine
	scheduler gocron.Scheduler
	cronExpr  string
}

// NewMaintenanceService creates the sweep runner with the given standard
// cron expression.
func NewMaintenanceService(engine *MemoryEngine, cronExpr string) (*MaintenanceService, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &MaintenanceService{
		engine:    engine,
		scheduler: scheduler,
		cronExpr:  cronExpr,
	}, nil
}

// Start registers the sweep job and starts the scheduler.
func (s *MaintenanceService) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.CronJob(s.cronExpr, false),
		gocron.NewTask(s.sweep),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance sweep: %w", err)
	}

	s.scheduler.Start()
	log.Printf("🧹 [MAINTENANCE] Memory sweep scheduled (%s)", s.cronExpr)
	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (s *MaintenanceService) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		log.Printf("⚠️ [MAINTENANCE] Scheduler shutdown error: %v", err)
	}
}

func (s *MaintenanceService) sweep() {
	started := time.Now()
	pruned := s.engine.PruneExpired(time.Now().UTC())
	if pruned > 0 {
		log.Printf("🧹 [MAINTENANCE] Pruned %d expired memories in %v", pruned, time.Since(started))
	}
}
