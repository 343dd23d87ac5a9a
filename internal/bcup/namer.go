package bcup

import (
	"fmt"
	"strings"
	"time"
)

// SnapshotName renders a snapshot directory name from a timestamp and a
// format string. The format uses single-letter fields, everything else is
// copied literally:
//
//	Y  four-digit year     H  hour (00-23)
//	y  two-digit year      M  minute
//	m  month               S  second
//	d  day                 f  microseconds (six digits)
//
// With zero-padded fields ordered most-significant first (e.g.
// "Y-m-d_H-M-S"), lexicographic order of the resulting names equals
// chronological order. The pruner and the change detector rely on that to
// locate the most recent snapshot by sorting directory entries.
func SnapshotName(format string, t time.Time) string {
	var b strings.Builder
	for _, r := range format {
		switch r {
		case 'Y':
			fmt.Fprintf(&b, "%04d", t.Year())
		case 'y':
			fmt.Fprintf(&b, "%02d", t.Year()%100)
		case 'm':
			fmt.Fprintf(&b, "%02d", int(t.Month()))
		case 'd':
			fmt.Fprintf(&b, "%02d", t.Day())
		case 'H':
			fmt.Fprintf(&b, "%02d", t.Hour())
		case 'M':
			fmt.Fprintf(&b, "%02d", t.Minute())
		case 'S':
			fmt.Fprintf(&b, "%02d", t.Second())
		case 'f':
			fmt.Fprintf(&b, "%06d", t.Nanosecond()/1000)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateNameFormat rejects formats that render to an empty name, a
// dot-prefixed name (reserved for temporary snapshots), or a name containing
// a path separator.
func ValidateNameFormat(format string) error {
	sample := SnapshotName(format, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
	if sample == "" {
		return fmt.Errorf("%w: name format %q renders to an empty name", ErrInvalidConfig, format)
	}
	if strings.HasPrefix(sample, ".") {
		return fmt.Errorf("%w: name format %q renders to a hidden name", ErrInvalidConfig, format)
	}
	if strings.ContainsAny(sample, `/\`) {
		return fmt.Errorf("%w: name format %q renders a path separator", ErrInvalidConfig, format)
	}
	return nil
}
