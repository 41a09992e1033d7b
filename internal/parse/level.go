package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MinLevel and MaxLevel bound the speed levels a user can select.
const (
	MinLevel = 1
	MaxLevel = 5
)

var levelRe = regexp.MustCompile(`(?i)^\s*(?:level\s*|l)?(\d+)\s*$`)

// Level extracts a selectable speed level from raw input such as "3",
// "level 3" or "L3".
func Level(raw string) (int, error) {
	m := levelRe.FindStringSubmatch(raw)
	if len(m) != 2 {
		return 0, fmt.Errorf("invalid speed level %q", raw)
	}
	level, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("invalid speed level %q: %w", raw, err)
	}
	if level < MinLevel || level > MaxLevel {
		return 0, fmt.Errorf("speed level %d out of range %d-%d", level, MinLevel, MaxLevel)
	}
	return level, nil
}

// Address normalizes a configured device address to host[:port]. Schemes
// and trailing paths that users tend to paste in are dropped.
func Address(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}
