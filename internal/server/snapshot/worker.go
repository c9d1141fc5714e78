package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/zhenzou/executors"

	"github.com/looplj/adminhub/internal/contexts"
	"github.com/looplj/adminhub/internal/log"
)

func (svc *SnapshotService) Start(ctx context.Context) error {
	if !svc.config.Enabled {
		log.Info(ctx, "Scheduled snapshots are disabled")
		return nil
	}

	return svc.scheduleSnapshot(ctx)
}

func (svc *SnapshotService) Stop(ctx context.Context) error {
	if svc.cancelFunc != nil {
		svc.cancelFunc()
	}

	if svc.executor == nil {
		return nil
	}

	return svc.executor.Shutdown(ctx)
}

func (svc *SnapshotService) scheduleSnapshot(ctx context.Context) error {
	if svc.cancelFunc != nil {
		return nil
	}

	cronExpr := svc.config.CRON
	if cronExpr == "" {
		cronExpr = "0 2 * * *" // Daily at 2 AM.
	}

	cancelFunc, err := svc.executor.ScheduleFuncAtCronRate(
		svc.runScheduledSnapshot,
		executors.CRONRule{Expr: cronExpr},
	)
	if err != nil {
		return fmt.Errorf("failed to schedule snapshot: %w", err)
	}

	svc.cancelFunc = cancelFunc

	log.Info(ctx, "Scheduled snapshots enabled",
		log.String("cron", cronExpr),
		log.String("dir", svc.config.Dir),
	)

	return nil
}

// runScheduledSnapshot is the cron entry point, it tags the run as
// snapshot-sourced before exporting.
func (svc *SnapshotService) runScheduledSnapshot(ctx context.Context) {
	ctx = contexts.WithSource(ctx, contexts.SourceSnapshot)

	if err := svc.performSnapshot(ctx); err != nil {
		log.Error(ctx, "Scheduled snapshot failed", log.Cause(err))
	}
}

func (svc *SnapshotService) performSnapshot(ctx context.Context) error {
	startAt := time.Now()

	manifest, err := svc.WriteSnapshot(ctx)
	if err != nil {
		return err
	}

	log.Info(ctx, "Snapshot completed",
		log.String("file", manifest.File),
		log.String("cost", time.Since(startAt).String()),
	)

	if svc.config.RetentionDays > 0 {
		if err := svc.cleanupOldSnapshots(ctx, svc.config.RetentionDays); err != nil {
			log.Warn(ctx, "Failed to cleanup old snapshots", log.Cause(err))
		}
	}

	return nil
}

func (svc *SnapshotService) cleanupOldSnapshots(ctx context.Context, retentionDays int) error {
	files, err := afero.ReadDir(svc.fs, svc.config.Dir)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	var snapshotFiles []os.FileInfo

	for _, f := range files {
		if isSnapshotFile(f.Name()) {
			snapshotFiles = append(snapshotFiles, f)
		}
	}

	sort.Slice(snapshotFiles, func(i, j int) bool {
		return snapshotFiles[i].ModTime().Before(snapshotFiles[j].ModTime())
	})

	for _, f := range snapshotFiles {
		if !f.ModTime().Before(cutoff) {
			continue
		}

		for _, name := range []string{f.Name(), f.Name() + manifestSuffix} {
			if err := svc.fs.Remove(filepath.Join(svc.config.Dir, name)); err != nil {
				log.Warn(ctx, "Failed to delete old snapshot",
					log.String("file", name),
					log.Cause(err),
				)
			} else {
				log.Info(ctx, "Deleted old snapshot",
					log.String("file", name),
				)
			}
		}
	}

	return nil
}

func isSnapshotFile(name string) bool {
	return strings.HasPrefix(name, snapshotPrefix) && strings.HasSuffix(name, snapshotSuffix)
}

// RunSnapshotNow triggers an immediate export outside the schedule.
func (svc *SnapshotService) RunSnapshotNow(ctx context.Context) (*Manifest, error) {
	manifest, err := svc.WriteSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	if svc.config.RetentionDays > 0 {
		if err := svc.cleanupOldSnapshots(ctx, svc.config.RetentionDays); err != nil {
			log.Warn(ctx, "Failed to cleanup old snapshots", log.Cause(err))
		}
	}

	return manifest, nil
}
