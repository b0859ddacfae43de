package metadata

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	zonedLayouts = []string{
		"2006:01:02 15:04:05-07:00",
		"2006:01:02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05-07:00",
	}
	naiveLayouts = []string{
		"2006:01:02 15:04:05",
		"2006:01:02 15:04:05.999999999",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
)

// parseTimestamp parses an EXIF or QuickTime date. A trailing "Z" is read
// as +00:00. Zoned values keep their offset so the local year and month stay
// readable; naive values keep their wall clock in UTC and report naive=true.
func parseTimestamp(s string) (t time.Time, naive bool, ok bool) {
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	if s == "" {
		return time.Time{}, false, false
	}
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}

	for _, layout := range zonedLayouts {
		if v, err := time.Parse(layout, s); err == nil && v.Year() > 0 {
			return v, false, true
		}
	}
	for _, layout := range naiveLayouts {
		if v, err := time.Parse(layout, s); err == nil && v.Year() > 0 {
			return v, true, true
		}
	}
	return time.Time{}, false, false
}

var filenameDate = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2} \d{2}\.\d{2}\.\d{2})`)

// FilenameTime parses names such as "2023-06-01 14.30.00.jpg".
func FilenameTime(path string) (time.Time, bool) {
	m := filenameDate.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02 15.04.05", m[1])
	if err != nil || t.Year() == 0 {
		return time.Time{}, false
	}
	return t, true
}
