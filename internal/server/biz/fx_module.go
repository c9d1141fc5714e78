package biz

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("biz",
	fx.Provide(NewAuthService),
	fx.Provide(NewItemService),
	fx.Provide(NewMetaService),
	fx.Provide(NewSystemService),
	fx.Invoke(func(lc fx.Lifecycle, auth *AuthService) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				auth.Close()
				return nil
			},
		})
	}),
)
