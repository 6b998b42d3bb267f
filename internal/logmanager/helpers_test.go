package logmanager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/berth-api/internal/logging"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t *testing.T, seoulTime string) *fakeClock {
	t.Helper()
	ts, err := time.ParseInLocation(timestampLayout, seoulTime, Seoul)
	require.NoError(t, err)
	return &fakeClock{now: ts}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t *testing.T, seoulTime string) {
	t.Helper()
	ts, err := time.ParseInLocation(timestampLayout, seoulTime, Seoul)
	require.NoError(t, err)
	c.mu.Lock()
	c.now = ts
	c.mu.Unlock()
}

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploads   []string
	downloads []string
	failKeys  map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:  make(map[string][]byte),
		failKeys: make(map[string]error),
	}
}

func (s *fakeStore) Upload(ctx context.Context, key string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, key)
	if err := s.failKeys[key]; err != nil {
		return err
	}
	s.objects[key] = append([]byte(nil), body...)
	return nil
}

func (s *fakeStore) Download(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloads = append(s.downloads, key)
	body, ok := s.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return body, nil
}

type fakeAggregator struct {
	mu        sync.Mutex
	streams   []string
	batches   map[string][][]ExportEvent
	ensureErr error
	putErr    error
}

func newFakeAggregator() *fakeAggregator {
	return &fakeAggregator{batches: make(map[string][][]ExportEvent)}
}

func (a *fakeAggregator) EnsureStream(ctx context.Context, stream string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.streams = append(a.streams, stream)
	return a.ensureErr
}

func (a *fakeAggregator) PutEvents(ctx context.Context, stream string, events []ExportEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.putErr != nil {
		return a.putErr
	}
	a.batches[stream] = append(a.batches[stream], events)
	return nil
}

func newTestManager(t *testing.T, clock Clock) *Manager {
	t.Helper()
	m := NewManager(ManagerConfig{
		Enabled:        true,
		Root:           filepath.Join(t.TempDir(), "logs"),
		Label:          "tests",
		DefaultContext: "HTTP",
	}, clock, NewMetrics(nil), logging.NewNopLogger())
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	var data []byte
	for _, line := range lines {
		data = append(data, line...)
		data = append(data, '\n')
	}
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var lines []string
	start := 0
	for i, b := range data {
		if b == '\n' {
			lines = append(lines, string(data[start:i]))
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, string(data[start:]))
	}
	return lines
}
