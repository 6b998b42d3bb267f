package logmanager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/berth-api/internal/logging"
)

type schedulerFixture struct {
	clock      *fakeClock
	manager    *Manager
	store      *fakeStore
	aggregator *fakeAggregator
	scheduler  *Scheduler
	yesterday  DateKey
}

func newSchedulerFixture(t *testing.T, cfg SchedulerConfig) *schedulerFixture {
	t.Helper()
	clock := newFakeClock(t, "2025-09-18 00:10:00")
	manager := newTestManager(t, clock)
	store := newFakeStore()
	aggregator := newFakeAggregator()
	exporter := NewExporter(manager.Layout(), store, aggregator, NewMetrics(nil), logging.NewNopLogger())

	return &schedulerFixture{
		clock:      clock,
		manager:    manager,
		store:      store,
		aggregator: aggregator,
		scheduler:  NewScheduler(cfg, exporter, manager, logging.NewNopLogger()),
		yesterday:  DateKey{Year: "2025", Month: "09", Day: "17"},
	}
}

func (f *schedulerFixture) path(kind StreamKind) string {
	return f.manager.Layout().Path(kind, f.yesterday)
}

func (f *schedulerFixture) seedYesterday(t *testing.T) {
	t.Helper()
	writeLines(t, f.path(StreamInfo),
		`{"timestamp":"2025-09-17 09:00:00","level":"info","message":"a"}`,
		`{"timestamp":"2025-09-17 11:00:00","level":"info","message":"c"}`,
	)
	writeLines(t, f.path(StreamError),
		`{"timestamp":"2025-09-17 10:00:00","level":"error","message":"b"}`,
	)
}

func TestExportDayBothSinksDisabledDoesNoIO(t *testing.T) {
	f := newSchedulerFixture(t, SchedulerConfig{})
	f.seedYesterday(t)

	require.NoError(t, f.scheduler.ExportDay(context.Background(), f.yesterday))

	assert.Empty(t, f.store.uploads)
	assert.Empty(t, f.aggregator.streams)
	assert.NoFileExists(t, filepath.Join(f.manager.Layout().Root, exportLockName))
	assert.FileExists(t, f.path(StreamInfo))
}

func TestExportDayRunsAggregatorThenObjectStore(t *testing.T) {
	f := newSchedulerFixture(t, SchedulerConfig{S3Enabled: true, CloudWatchEnabled: true})
	f.seedYesterday(t)

	require.NoError(t, f.scheduler.ExportDay(context.Background(), f.yesterday))

	batch := f.aggregator.batches["2025/09/17.log"]
	require.Len(t, batch, 1)
	require.Len(t, batch[0], 3)
	assert.Contains(t, batch[0][0].Message, `"message":"a"`)
	assert.Contains(t, batch[0][1].Message, `"message":"b"`)
	assert.Contains(t, batch[0][2].Message, `"message":"c"`)

	assert.ElementsMatch(t, []string{f.manager.Layout().ObjectKey(f.path(StreamInfo)), f.manager.Layout().ObjectKey(f.path(StreamError))}, f.store.uploads)
	assert.NoFileExists(t, f.path(StreamInfo))
	assert.NoFileExists(t, f.path(StreamError))
}

func TestExportDayAggregatorFailureDoesNotStopObjectStore(t *testing.T) {
	f := newSchedulerFixture(t, SchedulerConfig{S3Enabled: true, CloudWatchEnabled: true})
	// No error-level events yesterday: the aggregator export needs both
	// files, the object-store export does not.
	writeLines(t, f.path(StreamInfo), `{"timestamp":"2025-09-17 09:00:00","message":"a"}`)

	err := f.scheduler.ExportDay(context.Background(), f.yesterday)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLogFileNotFound)

	assert.Equal(t, []string{f.manager.Layout().ObjectKey(f.path(StreamInfo))}, f.store.uploads)
	assert.NoFileExists(t, f.path(StreamInfo))
}

func TestExportDayIsolatesObjectStoreFailures(t *testing.T) {
	f := newSchedulerFixture(t, SchedulerConfig{S3Enabled: true})
	f.seedYesterday(t)
	f.store.failKeys[f.manager.Layout().ObjectKey(f.path(StreamInfo))] = errors.New("network down")

	err := f.scheduler.ExportDay(context.Background(), f.yesterday)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")

	assert.Len(t, f.store.uploads, 2)
	assert.FileExists(t, f.path(StreamInfo))
	assert.NoFileExists(t, f.path(StreamError))
}

func TestExportDayRejectsIncompleteDays(t *testing.T) {
	f := newSchedulerFixture(t, SchedulerConfig{S3Enabled: true})

	err := f.scheduler.ExportDay(context.Background(), KeyOf(f.clock.Now()))
	assert.ErrorIs(t, err, ErrDayNotComplete)

	err = f.scheduler.ExportDay(context.Background(), DateKey{Year: "2025", Month: "09", Day: "19"})
	assert.ErrorIs(t, err, ErrDayNotComplete)
}

func TestExportDayHonoursLock(t *testing.T) {
	f := newSchedulerFixture(t, SchedulerConfig{S3Enabled: true})
	f.seedYesterday(t)

	require.NoError(t, os.MkdirAll(f.manager.Layout().Root, 0755))
	held := flock.New(filepath.Join(f.manager.Layout().Root, exportLockName))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer held.Unlock()

	err = f.scheduler.ExportDay(context.Background(), f.yesterday)
	assert.ErrorIs(t, err, ErrExportInProgress)
	assert.Empty(t, f.store.uploads)
}

func TestRunScheduledLogsFailuresToErrorStream(t *testing.T) {
	f := newSchedulerFixture(t, SchedulerConfig{CloudWatchEnabled: true})

	assert.NotPanics(t, f.scheduler.runScheduled)

	errorLines := readLines(t, f.manager.Layout().Path(StreamError, KeyOf(f.clock.Now())))
	require.Len(t, errorLines, 1)
	assert.Contains(t, errorLines[0], "[logmanager][Scheduler] Error")
	assert.Contains(t, errorLines[0], "log file not found")
}

func TestRunScheduledRecoversPanics(t *testing.T) {
	f := newSchedulerFixture(t, SchedulerConfig{S3Enabled: true})
	f.scheduler.exporter = nil
	f.seedYesterday(t)

	assert.NotPanics(t, f.scheduler.runScheduled)

	errorLines := readLines(t, f.manager.Layout().Path(StreamError, KeyOf(f.clock.Now())))
	require.Len(t, errorLines, 1)
	assert.Contains(t, errorLines[0], "panic during export")
}

func TestSchedulerStartStop(t *testing.T) {
	f := newSchedulerFixture(t, SchedulerConfig{S3Enabled: true})

	require.NoError(t, f.scheduler.Start())
	entries := f.scheduler.cron.Entries()
	require.Len(t, entries, 1)

	next := entries[0].Next.In(Seoul)
	assert.Equal(t, 0, next.Hour())
	assert.Equal(t, 10, next.Minute())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, f.scheduler.Stop(ctx))
}
