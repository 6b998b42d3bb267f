package objectstore

import (
	"context"

	"github.com/tech-arch1tect/berth-api/config"
	"github.com/tech-arch1tect/berth-api/internal/logging"
	"github.com/tech-arch1tect/berth-api/internal/logmanager"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(
		fx.Annotate(NewFromConfig, fx.As(new(logmanager.ObjectStore))),
	),
)

func NewFromConfig(cfg *config.Config, logger *logging.Logger) (*Client, error) {
	return New(context.Background(), Options{
		Region:    cfg.AWSRegion,
		AccessKey: cfg.AWSAccessKey,
		SecretKey: cfg.AWSSecretKey,
		Bucket:    cfg.AWSBucketName,
	}, logger.With(zap.String("service", "objectstore")))
}
