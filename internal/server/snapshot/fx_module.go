package snapshot

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("snapshot",
	fx.Provide(NewSnapshotService),
	fx.Invoke(func(lc fx.Lifecycle, svc *SnapshotService) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return svc.Start(ctx)
			},
			OnStop: func(ctx context.Context) error {
				return svc.Stop(ctx)
			},
		})
	}),
)
