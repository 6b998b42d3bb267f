package logmanager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/tech-arch1tect/berth-api/internal/logging"

	"go.uber.org/zap"
)

// ObjectStore is the subset of object storage the exporter needs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body []byte) error
	Download(ctx context.Context, key string) ([]byte, error)
}

// LogAggregator is the subset of the log-aggregation service the exporter
// needs. EnsureStream must treat an existing stream as success. PutEvents
// expects events sorted by timestamp.
type LogAggregator interface {
	EnsureStream(ctx context.Context, stream string) error
	PutEvents(ctx context.Context, stream string, events []ExportEvent) error
}

var ErrSinkNotConfigured = errors.New("sink not configured")

type Exporter struct {
	layout     Layout
	store      ObjectStore
	aggregator LogAggregator
	metrics    *Metrics
	logger     *logging.Logger
}

func NewExporter(layout Layout, store ObjectStore, aggregator LogAggregator, metrics *Metrics, logger *logging.Logger) *Exporter {
	return &Exporter{
		layout:     layout,
		store:      store,
		aggregator: aggregator,
		metrics:    metrics,
		logger:     logger,
	}
}

// ExportToAggregator merges both streams of one day into a single
// timestamp-ordered batch. Nothing is submitted unless both files parse.
func (e *Exporter) ExportToAggregator(ctx context.Context, infoPath, errorPath string) (err error) {
	defer func() {
		e.metrics.exportDone(sinkAggregator, err)
		if err != nil {
			err = fmt.Errorf("export to aggregator: %w", err)
		}
	}()

	if e.aggregator == nil {
		return ErrSinkNotConfigured
	}

	stream := e.layout.StreamName(infoPath)
	if err := e.aggregator.EnsureStream(ctx, stream); err != nil {
		return err
	}

	infoEvents, err := ReadEvents(infoPath)
	if err != nil {
		return err
	}
	errorEvents, err := ReadEvents(errorPath)
	if err != nil {
		return err
	}

	events := make([]ExportEvent, 0, len(infoEvents)+len(errorEvents))
	events = append(events, infoEvents...)
	events = append(events, errorEvents...)
	slices.SortStableFunc(events, func(a, b ExportEvent) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		default:
			return 0
		}
	})

	if err := e.aggregator.PutEvents(ctx, stream, events); err != nil {
		return err
	}

	e.logger.Info("exported logs to aggregator",
		zap.String("stream", stream),
		zap.Int("events", len(events)),
	)
	return nil
}

// ExportToObjectStore uploads one daily file and removes the local copy
// once the upload is acknowledged. A missing file is not an error.
func (e *Exporter) ExportToObjectStore(ctx context.Context, path string) (err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		if os.IsNotExist(statErr) {
			return nil
		}
		return fmt.Errorf("export to object store: %w", statErr)
	}

	defer func() {
		e.metrics.exportDone(sinkObjectStore, err)
		if err != nil {
			err = fmt.Errorf("export to object store: %w", err)
		}
	}()

	if e.store == nil {
		return ErrSinkNotConfigured
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	key := e.layout.ObjectKey(path)
	if err := e.store.Upload(ctx, key, body); err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("uploaded %s but failed to delete local copy: %w", key, err)
	}
	e.metrics.fileDeleted()

	e.logger.Info("exported log file to object store",
		zap.String("key", key),
		zap.Int("bytes", len(body)),
	)
	return nil
}

// FetchArchive downloads a previously exported daily file.
func (e *Exporter) FetchArchive(ctx context.Context, kind StreamKind, key DateKey) ([]byte, error) {
	if e.store == nil {
		return nil, ErrSinkNotConfigured
	}
	objectKey := e.layout.ObjectKey(e.layout.Path(kind, key))
	body, err := e.store.Download(ctx, objectKey)
	if err != nil {
		return nil, fmt.Errorf("fetch archive %s: %w", objectKey, err)
	}
	return body, nil
}
