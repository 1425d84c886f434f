package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Location resolves the reset timezone. Accepted forms are IANA names
// ("Europe/Madrid"), "UTC" and fixed offsets ("UTC+1", "+02:00", "-03:30").
func (r Reset) Location() (*time.Location, error) {
	return ParseLocation(r.Timezone)
}

func ParseLocation(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	switch strings.ToUpper(tz) {
	case "", "UTC", "GMT", "ETC/UTC":
		return time.UTC, nil
	}

	if loc, err := time.LoadLocation(tz); err == nil {
		return loc, nil
	}

	offset, ok := parseOffset(tz)
	if !ok {
		return nil, fmt.Errorf("unsupported timezone %q", tz)
	}

	return time.FixedZone(offsetName(offset), offset), nil
}

// parseOffset returns the offset east of UTC in seconds.
func parseOffset(s string) (int, bool) {
	if rest, ok := strings.CutPrefix(strings.ToUpper(s), "UTC"); ok {
		s = strings.TrimSpace(rest)
	}
	if len(s) < 2 {
		return 0, false
	}

	sign := 1
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, false
	}

	hours, minutes, _ := strings.Cut(s[1:], ":")
	if minutes == "" {
		minutes = "0"
	}

	h, err := strconv.Atoi(hours)
	if err != nil || h < 0 || h > 14 {
		return 0, false
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 || m >= 60 {
		return 0, false
	}

	return sign * (h*3600 + m*60), true
}

func offsetName(offset int) string {
	sign := '+'
	if offset < 0 {
		sign, offset = '-', -offset
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, offset/3600, offset%3600/60)
}
