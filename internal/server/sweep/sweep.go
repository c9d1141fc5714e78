package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/zhenzou/executors"
	"go.uber.org/fx"

	"github.com/looplj/adminhub/internal/contexts"
	"github.com/looplj/adminhub/internal/log"
	"github.com/looplj/adminhub/internal/storage"
)

// nowFunc stamps the purge cutoff, swappable in tests.
var nowFunc = time.Now

type Config struct {
	CRON string `conf:"cron" yaml:"cron" json:"cron"`
	// RetentionDays is how long soft-deleted items linger before the sweep
	// removes them for good. Zero keeps them forever.
	RetentionDays int  `conf:"retention_days" yaml:"retention_days" json:"retention_days"`
	VacuumEnabled bool `conf:"vacuum_enabled" yaml:"vacuum_enabled" json:"vacuum_enabled"`
}

// Worker permanently removes items whose soft deletion fell out of the
// retention window.
type Worker struct {
	Store      *storage.Store
	Executor   executors.ScheduledExecutor
	Config     Config
	CancelFunc context.CancelFunc
}

type Params struct {
	fx.In

	Config Config
	Store  *storage.Store
}

func NewWorker(params Params) *Worker {
	return &Worker{
		Store:    params.Store,
		Executor: executors.NewPoolScheduleExecutor(executors.WithMaxConcurrent(1)),
		Config:   params.Config,
	}
}

func (w *Worker) Start(ctx context.Context) error {
	cancelFunc, err := w.Executor.ScheduleFuncAtCronRate(
		w.runSweepWithSystemContext,
		executors.CRONRule{Expr: w.Config.CRON},
	)
	if err != nil {
		return err
	}

	w.CancelFunc = cancelFunc

	log.Info(ctx, "Sweep worker started",
		log.String("cron", w.Config.CRON),
		log.Int("retention_days", w.Config.RetentionDays),
		log.Bool("vacuum_enabled", w.Config.VacuumEnabled),
	)

	return nil
}

func (w *Worker) Stop(ctx context.Context) error {
	if w.CancelFunc != nil {
		w.CancelFunc()
	}

	return w.Executor.Shutdown(ctx)
}

// runSweepWithSystemContext is the scheduled entry point, it tags the run as
// system-sourced before sweeping.
func (w *Worker) runSweepWithSystemContext(ctx context.Context) {
	w.runSweep(contexts.WithSource(ctx, contexts.SourceSystem))
}

func (w *Worker) runSweep(ctx context.Context) {
	log.Info(ctx, "Starting sweep process")

	if w.Config.RetentionDays <= 0 {
		log.Debug(ctx, "Sweep retention disabled, skipping purge")
		return
	}

	cutoff := nowFunc().AddDate(0, 0, -w.Config.RetentionDays)

	purged, err := w.Store.PurgeDeleted(ctx, cutoff)
	if err != nil {
		log.Error(ctx, "Failed to purge soft-deleted items", log.Cause(err))
		return
	}

	log.Info(ctx, "Sweep completed",
		log.Int64("purged", purged),
		log.Time("cutoff", cutoff),
	)

	if w.Config.VacuumEnabled {
		if err := w.runVacuum(ctx); err != nil {
			log.Error(ctx, "Failed to run VACUUM after sweep", log.Cause(err))
		}
	}
}

// runVacuum rewrites the database file to give purged space back to the OS.
func (w *Worker) runVacuum(ctx context.Context) error {
	if !w.Config.VacuumEnabled {
		log.Debug(ctx, "VACUUM is disabled, skipping")
		return nil
	}

	startTime := time.Now()

	if err := w.Store.Vacuum(ctx); err != nil {
		return fmt.Errorf("failed to vacuum store: %w", err)
	}

	log.Info(ctx, "Store VACUUM completed",
		log.Duration("duration", time.Since(startTime)))

	return nil
}

// RunSweepNow manually triggers the sweep process.
// This can be useful for testing or manual execution.
func (w *Worker) RunSweepNow(ctx context.Context) error {
	w.runSweep(ctx)
	return nil
}

// RunVacuumNow manually triggers the VACUUM operation.
func (w *Worker) RunVacuumNow(ctx context.Context) error {
	return w.runVacuum(ctx)
}
