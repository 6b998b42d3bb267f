package logmanager

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tech-arch1tect/berth-api/config"
	"github.com/tech-arch1tect/berth-api/internal/logging"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewMetricsFromRegistry),
	fx.Provide(NewManagerFromConfig),
	fx.Provide(NewExporterFromSinks),
	fx.Provide(NewSchedulerFromConfig),
	fx.Provide(NewHandler),
	fx.Invoke(RegisterLifecycle),
)

func NewMetricsFromRegistry(reg *prometheus.Registry) *Metrics {
	return NewMetrics(reg)
}

func NewManagerFromConfig(cfg *config.Config, metrics *Metrics, logger *logging.Logger) *Manager {
	return NewManager(ManagerConfig{
		Enabled:        cfg.InfoLogEnabled,
		Root:           cfg.LogDir,
		Label:          cfg.ProjectLabel,
		DefaultContext: cfg.DefaultLogContext(),
	}, SystemClock{}, metrics, logger.With(zap.String("service", "logmanager")))
}

type SinkParams struct {
	fx.In

	Store      ObjectStore   `optional:"true"`
	Aggregator LogAggregator `optional:"true"`
}

func NewExporterFromSinks(sinks SinkParams, manager *Manager, metrics *Metrics, logger *logging.Logger) *Exporter {
	return NewExporter(manager.Layout(), sinks.Store, sinks.Aggregator, metrics, logger.With(zap.String("service", "exporter")))
}

func NewSchedulerFromConfig(cfg *config.Config, exporter *Exporter, manager *Manager, logger *logging.Logger) *Scheduler {
	return NewScheduler(SchedulerConfig{
		S3Enabled:         cfg.S3LogEnabled,
		CloudWatchEnabled: cfg.CloudWatchLogEnabled,
	}, exporter, manager, logger.With(zap.String("service", "log-scheduler")))
}

func RegisterLifecycle(lc fx.Lifecycle, manager *Manager, scheduler *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return scheduler.Start()
		},
		OnStop: func(ctx context.Context) error {
			if err := scheduler.Stop(ctx); err != nil {
				return err
			}
			return manager.Close()
		},
	})
}
