package logmanager

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"os"
	"strings"
	"time"
)

var (
	ErrLogFileNotFound = errors.New("log file not found")
	ErrMalformedLine   = errors.New("malformed log line")
)

const maxLineBytes = 4 * 1024 * 1024

// Events reads a daily file line by line and yields one ExportEvent per
// record, in file order. The first malformed line or read error is yielded
// as the final element and iteration stops. Each call reopens the file.
func Events(path string) iter.Seq2[ExportEvent, error] {
	return func(yield func(ExportEvent, error) bool) {
		file, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				err = fmt.Errorf("%w: %s", ErrLogFileNotFound, path)
			} else {
				err = fmt.Errorf("failed to open %s: %w", path, err)
			}
			yield(ExportEvent{}, err)
			return
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		scanner.Split(scanAnyLine)

		lineNo := 0
		for scanner.Scan() {
			lineNo++
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				continue
			}

			event, err := parseLine(line)
			if err != nil {
				yield(ExportEvent{}, fmt.Errorf("%s:%d: %w", path, lineNo, err))
				return
			}
			if !yield(event, nil) {
				return
			}
		}

		if err := scanner.Err(); err != nil {
			yield(ExportEvent{}, fmt.Errorf("failed to read %s: %w", path, err))
		}
	}
}

// ReadEvents drains Events. A single bad line fails the whole file and no
// events are returned.
func ReadEvents(path string) ([]ExportEvent, error) {
	var events []ExportEvent
	for event, err := range Events(path) {
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func parseLine(line string) (ExportEvent, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return ExportEvent{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}

	rawTimestamp, ok := fields["timestamp"]
	if !ok {
		return ExportEvent{}, fmt.Errorf("%w: missing timestamp", ErrMalformedLine)
	}
	delete(fields, "timestamp")

	var stamp string
	if err := json.Unmarshal(rawTimestamp, &stamp); err != nil {
		return ExportEvent{}, fmt.Errorf("%w: timestamp is not a string", ErrMalformedLine)
	}
	ts, err := time.ParseInLocation(timestampLayout, stamp, Seoul)
	if err != nil {
		return ExportEvent{}, fmt.Errorf("%w: bad timestamp %q", ErrMalformedLine, stamp)
	}

	message, err := json.Marshal(fields)
	if err != nil {
		return ExportEvent{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}

	return ExportEvent{
		Timestamp: ts.UnixMilli(),
		Message:   string(message),
	}, nil
}

// scanAnyLine splits on \n, \r\n and a lone \r.
func scanAnyLine(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
