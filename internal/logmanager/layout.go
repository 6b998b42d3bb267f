package logmanager

import (
	"fmt"
	"path/filepath"
	"strings"
)

type StreamKind string

const (
	StreamInfo  StreamKind = "info"
	StreamError StreamKind = "error"
)

func ParseStreamKind(s string) (StreamKind, error) {
	switch StreamKind(strings.ToLower(s)) {
	case StreamInfo:
		return StreamInfo, nil
	case StreamError:
		return StreamError, nil
	default:
		return "", fmt.Errorf("unknown stream %q", s)
	}
}

func (k StreamKind) filePrefix() string {
	if k == StreamError {
		return "error_"
	}
	return "log_"
}

// Layout maps (stream, date) pairs onto daily files:
//
//	<root>/<YYYY>/<MM>/log_<DD>.log
//	<root>/<YYYY>/<MM>/error_<DD>.log
type Layout struct {
	Root string
}

func NewLayout(root string) Layout {
	if root == "" {
		root = "logs"
	}
	return Layout{Root: filepath.Clean(root)}
}

func (l Layout) Path(kind StreamKind, key DateKey) string {
	return filepath.Join(l.Root, key.Year, key.Month, kind.filePrefix()+key.Day+".log")
}

// ObjectKeyPrefix is the fixed top-level folder of exported files in
// object storage, independent of where the log root lives on disk.
const ObjectKeyPrefix = "logs"

// StreamName derives the aggregation stream identifier from a daily file
// path: logs/2025/09/log_17.log becomes 2025/09/17.log.
func (l Layout) StreamName(path string) string {
	rel := l.relative(path)
	for _, kind := range []StreamKind{StreamInfo, StreamError} {
		if i := strings.LastIndex(rel, "/"+kind.filePrefix()); i >= 0 {
			return rel[:i+1] + rel[i+1+len(kind.filePrefix()):]
		}
	}
	return rel
}

// ObjectKey is the object-storage key for a daily file: its path below
// Root under ObjectKeyPrefix, e.g. logs/2025/09/log_17.log.
func (l Layout) ObjectKey(path string) string {
	return ObjectKeyPrefix + "/" + l.relative(path)
}

// relative is path below Root with forward slashes. Paths outside Root are
// returned as given.
func (l Layout) relative(path string) string {
	rel, err := filepath.Rel(l.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = path
	}
	return filepath.ToSlash(rel)
}
