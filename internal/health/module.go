package health

import (
	"context"

	"github.com/tech-arch1tect/berth-api/internal/database"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Options(
	fx.Provide(NewHandlerFromDB),
)

func NewHandlerFromDB(db *gorm.DB) *Handler {
	return NewHandler(map[string]Checker{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
	})
}
