package logmanager

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// rotation is the active writer state of one channel: the Seoul date the
// open handle belongs to, and the handle itself. A nil file means nothing
// has been written for that date yet.
type rotation struct {
	date DateKey
	path string
	file *os.File
}

// channel is one append-only stream (info or error). Rotation is driven by
// writes: the date is compared before every append and the handle is
// swapped when it changed, so the record that crosses midnight is the
// first line of the new day's file.
type channel struct {
	kind   StreamKind
	layout Layout

	mu    sync.Mutex
	state rotation
}

func newChannel(kind StreamKind, layout Layout) *channel {
	return &channel{
		kind:   kind,
		layout: layout,
	}
}

func (c *channel) write(now time.Time, line []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLocked(KeyOf(now)); err != nil {
		return err
	}

	if _, err := c.state.file.Write(line); err != nil {
		return fmt.Errorf("failed to write %s log %s: %w", c.kind, c.state.path, err)
	}
	return nil
}

func (c *channel) ensureLocked(today DateKey) error {
	if c.state.file != nil && c.state.date == today {
		return nil
	}

	next, err := c.open(today)
	if err != nil {
		return err
	}

	previous := c.state
	c.state = next
	if previous.file != nil {
		// The old day is complete; a close error cannot lose appended lines.
		_ = previous.file.Close()
	}
	return nil
}

func (c *channel) open(key DateKey) (rotation, error) {
	path := c.layout.Path(c.kind, key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return rotation{}, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return rotation{}, fmt.Errorf("failed to open %s log file %s: %w", c.kind, path, err)
	}

	return rotation{date: key, path: path, file: file}, nil
}

func (c *channel) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.file == nil {
		return nil
	}
	err := c.state.file.Close()
	c.state = rotation{}
	return err
}
