package journal

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Text returns the human-readable body of an entry: the commit message,
// the conversation summary, or the content of any other type (falling back
// to a message field).
func (e Entry) Text() string {
	switch e.Type {
	case TypeCommit:
		return e.String("message")
	case TypeConversation:
		return e.String("summary")
	}
	if s := e.String("content"); s != "" {
		return s
	}
	return e.String("message")
}

// Tags returns the entry's tags, or nil when it has none.
func (e Entry) Tags() []string {
	var tags []string
	if ok, err := e.Field("tags", &tags); !ok || err != nil {
		return nil
	}
	return tags
}

// FilterByType keeps entries whose type is one of types.
// An empty types list keeps everything.
func FilterByType(entries []Entry, types ...string) []Entry {
	if len(types) == 0 {
		return entries
	}
	result := []Entry{}
	for _, e := range entries {
		if slices.Contains(types, e.Type) {
			result = append(result, e)
		}
	}
	return result
}

// FilterSince keeps entries stamped at or after cutoff.
func FilterSince(entries []Entry, cutoff time.Time) []Entry {
	result := []Entry{}
	for _, e := range entries {
		if !e.Timestamp.Before(cutoff) {
			result = append(result, e)
		}
	}
	return result
}

// FilterByTags keeps entries carrying any of tags. An empty list keeps
// everything.
func FilterByTags(entries []Entry, tags []string) []Entry {
	if len(tags) == 0 {
		return entries
	}
	result := []Entry{}
	for _, e := range entries {
		for _, tag := range e.Tags() {
			if slices.Contains(tags, tag) {
				result = append(result, e)
				break
			}
		}
	}
	return result
}

// SortByTimestamp returns a copy of entries ordered oldest first. Entries
// with equal timestamps keep their append order.
func SortByTimestamp(entries []Entry) []Entry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b Entry) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return sorted
}

// Last returns the final n entries; all of them when n <= 0 or n exceeds
// the count.
func Last(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[len(entries)-n:]
}

var sinceDuration = regexp.MustCompile(`^(\d+)([hdwm])$`)

// ParseSince turns a relative duration ("24h", "7d", "2w", "1m") or a date
// ("2026-01-17", RFC 3339) into a cutoff relative to now.
func ParseSince(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if m := sinceDuration.FindStringSubmatch(value); len(m) == 3 {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return time.Time{}, fmt.Errorf("invalid duration %q", value)
		}
		switch m[2] {
		case "h":
			return now.Add(-time.Duration(n) * time.Hour), nil
		case "d":
			return now.AddDate(0, 0, -n), nil
		case "w":
			return now.AddDate(0, 0, -7*n), nil
		default:
			return now.AddDate(0, -n, 0), nil
		}
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid since value %q; use a duration (24h, 7d, 2w) or a date (2026-01-17)", value)
}
