package logmanager

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tech-arch1tect/berth-api/internal/logging"

	"go.uber.org/zap"
)

type ManagerConfig struct {
	Enabled        bool
	Root           string
	Label          string
	DefaultContext string
}

// Manager writes request and application logs into the two daily streams.
type Manager struct {
	enabled   bool
	clock     Clock
	layout    Layout
	formatter *Formatter
	infoCh    *channel
	errorCh   *channel
	metrics   *Metrics
	console   *logging.Logger
}

func NewManager(cfg ManagerConfig, clock Clock, metrics *Metrics, console *logging.Logger) *Manager {
	if clock == nil {
		clock = SystemClock{}
	}
	layout := NewLayout(cfg.Root)

	m := &Manager{
		enabled:   cfg.Enabled,
		clock:     clock,
		layout:    layout,
		formatter: NewFormatter(cfg.Label, cfg.DefaultContext),
		infoCh:    newChannel(StreamInfo, layout),
		errorCh:   newChannel(StreamError, layout),
		metrics:   metrics,
		console:   console,
	}

	if console != nil {
		console.Info("log manager initialized",
			zap.Bool("info_log", cfg.Enabled),
			zap.String("root", layout.Root),
		)
	}
	return m
}

func (m *Manager) Log(msg Message, context string) {
	m.report(m.Write(LevelInfo, msg, context))
}

func (m *Manager) Warn(msg Message, context string) {
	m.report(m.Write(LevelWarn, msg, context))
}

func (m *Manager) Debug(msg Message, context string) {
	m.report(m.Write(LevelDebug, msg, context))
}

func (m *Manager) Verbose(msg Message, context string) {
	m.report(m.Write(LevelVerbose, msg, context))
}

// Error writes to the error stream and mirrors the record on the console.
func (m *Manager) Error(msg Message, context string) {
	m.report(m.Write(LevelError, msg, context))
}

// Write formats and appends one record. It is a no-op while file logging
// is disabled, for every level including error.
func (m *Manager) Write(level Level, msg Message, context string) error {
	now := m.clock.Now()
	record := m.formatter.Format(now, level, msg, context)

	if level == LevelError && m.console != nil {
		m.console.Error(record.Message,
			zap.String("context", record.Context),
			zap.String("original_url", record.OriginalURL),
			zap.Int("status_code", record.StatusCode),
		)
	}

	if !m.enabled {
		return nil
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal log record: %w", err)
	}
	line = append(line, '\n')

	ch := m.channelFor(level.stream())
	if err := ch.write(now, line); err != nil {
		return err
	}
	m.metrics.recordWritten(ch.kind)
	return nil
}

func (m *Manager) Enabled() bool {
	return m.enabled
}

func (m *Manager) Layout() Layout {
	return m.layout
}

func (m *Manager) Clock() Clock {
	return m.clock
}

func (m *Manager) Close() error {
	return errors.Join(m.infoCh.close(), m.errorCh.close())
}

func (m *Manager) channelFor(kind StreamKind) *channel {
	if kind == StreamError {
		return m.errorCh
	}
	return m.infoCh
}

func (m *Manager) report(err error) {
	if err == nil || m.console == nil {
		return
	}
	m.console.Error("failed to write log record", zap.Error(err))
}
