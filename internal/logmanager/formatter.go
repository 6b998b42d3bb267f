package logmanager

import (
	"fmt"
	"time"
)

const logVersion = "V1"

type Formatter struct {
	label          string
	defaultContext string
}

func NewFormatter(label, defaultContext string) *Formatter {
	return &Formatter{
		label:          label,
		defaultContext: defaultContext,
	}
}

// Format builds the record for one log call at instant now. It has no side
// effects.
func (f *Formatter) Format(now time.Time, level Level, msg Message, context string) Record {
	if context == "" {
		context = f.defaultContext
	}

	record := Record{
		Timestamp:  now.In(Seoul).Format(timestampLayout),
		LogVersion: logVersion,
		Label:      f.label,
		Level:      level,
		Context:    context,
	}

	switch m := msg.(type) {
	case PlainMessage:
		record.Message = string(m)
	case StructuredMessage:
		record.Message = m.Message
		record.Data = m.Data
		record.OriginalURL = m.OriginalURL
		record.Method = m.Method
		record.StatusCode = m.StatusCode
		record.IP = m.IP
		record.UserAgent = m.UserAgent
		if m.ResponseTime > 0 {
			record.ResponseTime = fmt.Sprintf("%d ms", m.ResponseTime.Milliseconds())
		}
	case *StructuredMessage:
		if m != nil {
			return f.Format(now, level, *m, context)
		}
	}

	return record
}
