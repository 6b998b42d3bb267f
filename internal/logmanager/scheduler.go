package logmanager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"
	"github.com/tech-arch1tect/berth-api/internal/logging"

	"go.uber.org/zap"
)

// ExportSchedule fires at 00:10 Seoul time every day.
const ExportSchedule = "10 0 * * *"

const exportLockName = ".export.lock"

var (
	ErrExportInProgress = errors.New("another export holds the lock")
	ErrDayNotComplete   = errors.New("day is not complete yet")
)

type SchedulerConfig struct {
	S3Enabled         bool
	CloudWatchEnabled bool
}

// Scheduler ships the previous day's files once a day. A run is never
// retried: failures are written to the error stream and the next attempt
// is the next day's run.
type Scheduler struct {
	cfg      SchedulerConfig
	exporter *Exporter
	manager  *Manager
	logger   *logging.Logger
	cron     *cron.Cron
}

func NewScheduler(cfg SchedulerConfig, exporter *Exporter, manager *Manager, logger *logging.Logger) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		exporter: exporter,
		manager:  manager,
		logger:   logger,
		cron:     cron.New(cron.WithLocation(Seoul)),
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(ExportSchedule, s.runScheduled); err != nil {
		return fmt.Errorf("failed to schedule log export: %w", err)
	}
	s.cron.Start()

	s.logger.Info("log export scheduled",
		zap.String("schedule", ExportSchedule),
		zap.String("timezone", Seoul.String()),
		zap.Bool("s3_log", s.cfg.S3Enabled),
		zap.Bool("cloudwatch_log", s.cfg.CloudWatchEnabled),
	)
	return nil
}

// Stop prevents further firings and waits for a running export, bounded by
// ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runScheduled() {
	defer func() {
		if r := recover(); r != nil {
			s.manager.Error(PlainMessage(fmt.Sprintf("[logmanager][Scheduler] panic during export: %v", r)), "")
		}
	}()

	now := s.manager.Clock().Now()
	if err := s.ExportDay(context.Background(), Yesterday(now)); err != nil {
		s.manager.Error(PlainMessage("[logmanager][Scheduler] Error : "+err.Error()), "")
	}
}

// ExportDay runs both configured exports for one completed day. The
// aggregation export runs first because the object-store export deletes
// the local files. Failures of the individual steps are joined.
func (s *Scheduler) ExportDay(ctx context.Context, key DateKey) error {
	if !s.cfg.S3Enabled && !s.cfg.CloudWatchEnabled {
		return nil
	}

	today := KeyOf(s.manager.Clock().Now())
	if key.String() >= today.String() {
		return fmt.Errorf("%w: %s", ErrDayNotComplete, key)
	}

	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	layout := s.manager.Layout()
	infoPath := layout.Path(StreamInfo, key)
	errorPath := layout.Path(StreamError, key)

	started := time.Now()
	var errs []error

	if s.cfg.CloudWatchEnabled {
		if err := s.exporter.ExportToAggregator(ctx, infoPath, errorPath); err != nil {
			s.logger.Error("aggregator export failed", zap.String("date", key.String()), zap.Error(err))
			errs = append(errs, err)
		}
	}

	if s.cfg.S3Enabled {
		for _, path := range []string{infoPath, errorPath} {
			if err := s.exporter.ExportToObjectStore(ctx, path); err != nil {
				s.logger.Error("object store export failed", zap.String("path", path), zap.Error(err))
				errs = append(errs, err)
			}
		}
	}

	s.logger.Info("log export finished",
		zap.String("date", key.String()),
		zap.Int("failures", len(errs)),
		zap.Duration("duration", time.Since(started)),
	)
	return errors.Join(errs...)
}

// lock keeps two processes sharing one log directory from exporting the
// same files concurrently.
func (s *Scheduler) lock() (func(), error) {
	root := s.manager.Layout().Root
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log root: %w", err)
	}

	fl := flock.New(filepath.Join(root, exportLockName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire export lock: %w", err)
	}
	if !locked {
		return nil, ErrExportInProgress
	}
	return func() { _ = fl.Unlock() }, nil
}
