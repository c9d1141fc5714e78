package snapshot

import (
	"context"

	"github.com/spf13/afero"
	"github.com/zhenzou/executors"
	"go.uber.org/fx"

	"github.com/looplj/adminhub/internal/schema"
	"github.com/looplj/adminhub/internal/storage"
)

type Config struct {
	Enabled bool   `conf:"enabled" yaml:"enabled" json:"enabled"`
	Dir     string `conf:"dir" yaml:"dir" json:"dir"`
	CRON    string `conf:"cron" yaml:"cron" json:"cron"`
	// RetentionDays bounds how long archives stay on disk. Zero keeps them
	// forever.
	RetentionDays int `conf:"retention_days" yaml:"retention_days" json:"retention_days"`
}

type SnapshotServiceParams struct {
	fx.In

	Config   Config
	Store    *storage.Store
	Registry *schema.Registry
}

func NewSnapshotService(params SnapshotServiceParams) *SnapshotService {
	return &SnapshotService{
		store:    params.Store,
		registry: params.Registry,
		config:   params.Config,
		fs:       afero.NewOsFs(),
		executor: executors.NewPoolScheduleExecutor(executors.WithMaxConcurrent(1)),
	}
}

type SnapshotService struct {
	store    *storage.Store
	registry *schema.Registry
	config   Config

	fs afero.Fs

	executor   executors.ScheduledExecutor
	cancelFunc context.CancelFunc
}
