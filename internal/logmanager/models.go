package logmanager

import (
	"time"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
	LevelDebug   Level = "debug"
	LevelVerbose Level = "verbose"
)

func (l Level) stream() StreamKind {
	if l == LevelError {
		return StreamError
	}
	return StreamInfo
}

// Message is either a PlainMessage or a StructuredMessage.
type Message interface {
	isMessage()
}

type PlainMessage string

func (PlainMessage) isMessage() {}

// StructuredMessage carries request metadata alongside the text. Zero
// values are left out of the serialized record.
type StructuredMessage struct {
	Message      string
	Data         any
	OriginalURL  string
	Method       string
	StatusCode   int
	IP           string
	UserAgent    string
	ResponseTime time.Duration
}

func (StructuredMessage) isMessage() {}

// Record is one serialized log line. Field order matches the on-disk
// format.
type Record struct {
	Timestamp    string `json:"timestamp"`
	LogVersion   string `json:"logVersion"`
	Label        string `json:"label"`
	Level        Level  `json:"level"`
	OriginalURL  string `json:"originalUrl,omitempty"`
	Method       string `json:"method,omitempty"`
	StatusCode   int    `json:"statusCode,omitempty"`
	Message      string `json:"message"`
	Data         any    `json:"data,omitempty"`
	Context      string `json:"context,omitempty"`
	IP           string `json:"ip,omitempty"`
	UserAgent    string `json:"userAgent,omitempty"`
	ResponseTime string `json:"responseTime,omitempty"`
}

// ExportEvent is the flat shape accepted by the log-aggregation sink.
type ExportEvent struct {
	Timestamp int64
	Message   string
}
