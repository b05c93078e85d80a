// Package feed serves the rolling window of recently stored events.
package feed

import "time"

// DisplayLayout renders timestamps like "19 Oct 2026 - 03:04 PM".
const DisplayLayout = "02 Jan 2006 - 03:04 PM"

// Zone is a fixed display offset with its label.
type Zone struct {
	Label  string
	Offset time.Duration
}

// DefaultZone is Indian Standard Time.
var DefaultZone = Zone{Label: "IST", Offset: 5*time.Hour + 30*time.Minute}

// DefaultWindow is how far back the feed reaches.
const DefaultWindow = 60 * time.Second

// FormatTimestamp renders t shifted by offset, followed by label.
func FormatTimestamp(t time.Time, offset time.Duration, label string) string {
	s := t.UTC().Add(offset).Format(DisplayLayout)
	if label == "" {
		return s
	}
	return s + " " + label
}

// Format renders t in the zone.
func (z Zone) Format(t time.Time) string {
	return FormatTimestamp(t, z.Offset, z.Label)
}
