package database

import (
	"context"

	"github.com/tech-arch1tect/berth-api/config"
	"github.com/tech-arch1tect/berth-api/internal/logging"
	"github.com/tech-arch1tect/berth-api/internal/user"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Options(
	fx.Provide(NewFromConfig),
	fx.Invoke(RegisterShutdown),
)

func NewFromConfig(cfg *config.Config, logger *logging.Logger) (*gorm.DB, error) {
	return Open(cfg, logger, &user.User{})
}

func RegisterShutdown(lc fx.Lifecycle, db *gorm.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return Close(db)
		},
	})
}
