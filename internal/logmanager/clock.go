package logmanager

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

// Seoul is the only calendar the log pipeline understands. Day boundaries,
// record timestamps and the export schedule are all expressed in it.
var Seoul = mustLoadSeoul()

func mustLoadSeoul() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// DateKey identifies one Seoul calendar day with zero-padded components.
type DateKey struct {
	Year  string
	Month string
	Day   string
}

func KeyOf(t time.Time) DateKey {
	local := t.In(Seoul)
	return DateKey{
		Year:  fmt.Sprintf("%04d", local.Year()),
		Month: fmt.Sprintf("%02d", int(local.Month())),
		Day:   fmt.Sprintf("%02d", local.Day()),
	}
}

func Yesterday(t time.Time) DateKey {
	local := t.In(Seoul)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Seoul)
	return KeyOf(midnight.AddDate(0, 0, -1))
}

// ParseDateKey accepts YYYY-MM-DD.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.ParseInLocation(dateLayout, s, Seoul)
	if err != nil {
		return DateKey{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return KeyOf(t), nil
}

func (k DateKey) String() string {
	return k.Year + "-" + k.Month + "-" + k.Day
}
