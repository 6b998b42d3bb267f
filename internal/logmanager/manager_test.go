package logmanager

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/berth-api/internal/logging"
)

func TestManagerRotatesAtSeoulMidnight(t *testing.T) {
	clock := newFakeClock(t, "2025-09-17 23:59:59")
	m := newTestManager(t, clock)

	m.Log(PlainMessage("before midnight"), "")
	clock.Set(t, "2025-09-18 00:00:01")
	m.Log(PlainMessage("after midnight"), "")

	layout := m.Layout()
	day17 := layout.Path(StreamInfo, DateKey{Year: "2025", Month: "09", Day: "17"})
	day18 := layout.Path(StreamInfo, DateKey{Year: "2025", Month: "09", Day: "18"})

	lines17 := readLines(t, day17)
	lines18 := readLines(t, day18)
	require.Len(t, lines17, 1)
	require.Len(t, lines18, 1)
	assert.Contains(t, lines17[0], `"timestamp":"2025-09-17 23:59:59"`)
	assert.Contains(t, lines17[0], "before midnight")
	assert.Contains(t, lines18[0], `"timestamp":"2025-09-18 00:00:01"`)
	assert.Contains(t, lines18[0], "after midnight")
}

func TestManagerRoutesErrorsToErrorStream(t *testing.T) {
	clock := newFakeClock(t, "2025-09-17 10:00:00")
	m := newTestManager(t, clock)

	m.Log(PlainMessage("info"), "")
	m.Warn(PlainMessage("warn"), "")
	m.Debug(PlainMessage("debug"), "")
	m.Verbose(PlainMessage("verbose"), "")
	m.Error(StructuredMessage{Message: "boom", StatusCode: 500}, "")

	key := KeyOf(clock.Now())
	infoLines := readLines(t, m.Layout().Path(StreamInfo, key))
	errorLines := readLines(t, m.Layout().Path(StreamError, key))

	require.Len(t, infoLines, 4)
	require.Len(t, errorLines, 1)

	var record Record
	require.NoError(t, json.Unmarshal([]byte(errorLines[0]), &record))
	assert.Equal(t, LevelError, record.Level)
	assert.Equal(t, 500, record.StatusCode)
}

func TestManagerCreatesFilesLazily(t *testing.T) {
	clock := newFakeClock(t, "2025-09-17 10:00:00")
	m := newTestManager(t, clock)

	m.Log(PlainMessage("only info"), "")

	_, err := os.Stat(m.Layout().Path(StreamError, KeyOf(clock.Now())))
	assert.True(t, os.IsNotExist(err))
}

func TestManagerDisabledWritesNothing(t *testing.T) {
	root := filepath.Join(t.TempDir(), "logs")
	m := NewManager(ManagerConfig{Enabled: false, Root: root}, newFakeClock(t, "2025-09-17 10:00:00"), nil, logging.NewNopLogger())

	m.Log(PlainMessage("x"), "")
	m.Error(PlainMessage("y"), "")
	assert.NoError(t, m.Write(LevelWarn, PlainMessage("z"), ""))

	_, err := os.Stat(root)
	assert.True(t, os.IsNotExist(err))
}

func TestManagerAppendsAcrossReopen(t *testing.T) {
	clock := newFakeClock(t, "2025-09-17 10:00:00")
	m := newTestManager(t, clock)

	require.NoError(t, m.Write(LevelInfo, PlainMessage("first"), ""))
	require.NoError(t, m.Close())
	require.NoError(t, m.Write(LevelInfo, PlainMessage("second"), ""))

	lines := readLines(t, m.Layout().Path(StreamInfo, KeyOf(clock.Now())))
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "first")
	assert.Contains(t, lines[1], "second")
}

func TestManagerConcurrentWritesAreWholeLines(t *testing.T) {
	clock := newFakeClock(t, "2025-09-17 10:00:00")
	m := newTestManager(t, clock)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				m.Log(PlainMessage("concurrent"), "")
			}
		}()
	}
	wg.Wait()

	lines := readLines(t, m.Layout().Path(StreamInfo, KeyOf(clock.Now())))
	require.Len(t, lines, 500)
	for _, line := range lines {
		assert.True(t, json.Valid([]byte(line)))
	}
}
