package auth

import (
	"github.com/tech-arch1tect/berth-api/config"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewTokenServiceFromConfig),
	fx.Provide(NewService),
	fx.Provide(NewHandler),
)

func NewTokenServiceFromConfig(cfg *config.Config) *TokenService {
	return NewTokenService(cfg.AccessSecretKey, cfg.RefreshSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
}
