package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// "04:40", "4.40", "04:40 (WIB)", "04:40 WIB"
	clockRe  = regexp.MustCompile(`^(\d{1,2})\s*[:.]\s*(\d{2})$`)
	suffixRe = regexp.MustCompile(`\s*\(?\s*([A-Za-z.]+)\s*\)?\s*$`)
	meridiem = regexp.MustCompile(`(?i)^[ap]\.?m\.?$`)
)

// zoneTags are the timezone annotations accepted after a clock value.
var zoneTags = map[string]bool{
	"WIB":  true,
	"WITA": true,
	"WIT":  true,
	"KSA":  true,
	"AST":  true,
	"UTC":  true,
	"GMT":  true,
}

// ParsedClock is a wall-clock time of day without a date.
type ParsedClock struct {
	Hour   int
	Minute int
}

// ParseClock extracts hour and minute from a 24-hour schedule string. Known
// timezone suffixes such as "(WIB)" or "KSA" are ignored; any other suffix,
// including AM/PM, is an error.
func ParseClock(raw string) (ParsedClock, error) {
	s := strings.TrimSpace(raw)
	if m := suffixRe.FindStringSubmatchIndex(s); m != nil {
		tag := s[m[2]:m[3]]
		switch {
		case meridiem.MatchString(tag):
			return ParsedClock{}, fmt.Errorf("12-hour clock not supported: %q", raw)
		case !zoneTags[strings.ToUpper(tag)]:
			return ParsedClock{}, fmt.Errorf("unknown clock suffix %q in %q", tag, raw)
		}
		s = strings.TrimSpace(s[:m[0]])
	}

	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return ParsedClock{}, fmt.Errorf("unable to parse clock: %q", raw)
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return ParsedClock{}, fmt.Errorf("unable to parse hour from %q: %w", raw, err)
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil {
		return ParsedClock{}, fmt.Errorf("unable to parse minute from %q: %w", raw, err)
	}

	if hour > 23 || minute > 59 {
		return ParsedClock{}, fmt.Errorf("clock out of range: %q", raw)
	}
	return ParsedClock{Hour: hour, Minute: minute}, nil
}
