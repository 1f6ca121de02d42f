package event

import (
	"strings"
	"unicode"
)

const unknownStart = "0000000000"

// GenerateID builds the deterministic event identifier
// "<spider>/<YYYYmmddHHMM>/x/<snake_case name>".
// It depends only on stable fields, never on the extraction time.
func GenerateID(spider, name string, start Moment) string {
	startStr := unknownStart
	if !start.Date.IsZero() {
		clock := Clock{}
		if start.Time != nil {
			clock = *start.Time
		}
		startStr = strings.ReplaceAll(start.Date.String(), "-", "") +
			strings.ReplaceAll(clock.String(), ":", "")
	}
	return strings.Join([]string{spider, startStr, "x", Underscore(name)}, "/")
}

// Underscore converts a display name into snake_case,
// e.g. "Zoning Board of Appeals Meeting" -> "zoning_board_of_appeals_meeting".
func Underscore(name string) string {
	var b strings.Builder
	var prev rune
	pendingSep := false
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingSep = true
			prev = r
			continue
		}
		if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			pendingSep = true
		}
		if pendingSep && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSep = false
		b.WriteRune(unicode.ToLower(r))
		prev = r
	}
	return b.String()
}
