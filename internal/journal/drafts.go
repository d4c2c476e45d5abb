package journal

import (
	"fmt"
	"time"
)

// Draft styles.
const (
	StyleTimeline  = "timeline"
	StyleNarrative = "narrative"
)

// DraftName returns the file name for a draft of style written on day:
// timeline-YYYY-MM-DD.md for timelines, blog-YYYY-MM-DD.md otherwise.
// The day is taken in UTC. A second draft of the same style on the same day
// overwrites the first.
func DraftName(style string, day time.Time) string {
	prefix := "blog"
	if style == StyleTimeline {
		prefix = "timeline"
	}
	return fmt.Sprintf("%s-%s.md", prefix, day.UTC().Format(time.DateOnly))
}
