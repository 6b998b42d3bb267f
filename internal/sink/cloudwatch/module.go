package cloudwatch

import (
	"context"

	"github.com/tech-arch1tect/berth-api/config"
	"github.com/tech-arch1tect/berth-api/internal/logging"
	"github.com/tech-arch1tect/berth-api/internal/logmanager"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewFromConfig),
	fx.Provide(func(c *Client) logmanager.LogAggregator { return c }),
	fx.Invoke(RegisterLogGroup),
)

func NewFromConfig(cfg *config.Config, logger *logging.Logger) (*Client, error) {
	return New(context.Background(), Options{
		Region:    cfg.AWSRegion,
		AccessKey: cfg.AWSAccessKey,
		SecretKey: cfg.AWSSecretKey,
		LogGroup:  cfg.LogGroup,
	}, logger.With(zap.String("service", "cloudwatch")))
}

// RegisterLogGroup creates the log group at startup when shipping is on. A
// failure is logged and the exports will report it later.
func RegisterLogGroup(lc fx.Lifecycle, cfg *config.Config, client *Client, logger *logging.Logger) {
	if !cfg.CloudWatchLogEnabled {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.EnsureGroup(ctx); err != nil {
				logger.Error("failed to ensure cloudwatch log group", zap.Error(err))
			}
			return nil
		},
	})
}
