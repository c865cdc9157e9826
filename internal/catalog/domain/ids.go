package domain

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/zjrosen/marquee/internal/domain/violation"
)

var integerPattern = regexp.MustCompile(`^-?[0-9]+$`)

// parseInteger reports whether raw is an integer literal and returns its value.
// Literals that overflow int are treated as non-integers.
func parseInteger(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if !integerPattern.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// checkID runs the format checks shared by every identifier property:
// mandatory, then integer, then positive. noun names the owner ("movie", "person").
func checkID(raw, noun, prop string) violation.Violation {
	if strings.TrimSpace(raw) == "" {
		return violation.Mandatory("The %s's %s is required!", noun, prop)
	}
	id, ok := parseInteger(raw)
	if !ok {
		return violation.OutOfRange("The %s's %s must be an integer, but is %q!", noun, prop, raw)
	}
	if id < 1 {
		return violation.OutOfInterval("The %s's %s must be larger than 0, but is %d!", noun, prop, id)
	}
	return violation.OKWith(id)
}

func checkIDAsID(raw, noun, prop string, existing Container) violation.Violation {
	v := checkID(raw, noun, prop)
	if !v.Ok() || existing == nil {
		return v
	}
	if id := v.Value.(int); existing.Contains(id) {
		return violation.NotUnique("The %s's %s (%d) is already taken by another %s!", noun, prop, id, noun)
	}
	return v
}

func checkIDAsIDRef(raw, noun, prop string, existing Container) violation.Violation {
	v := checkID(raw, noun, prop)
	if !v.Ok() {
		return v
	}
	if id := v.Value.(int); existing == nil || !existing.Contains(id) {
		return violation.Dangling("The %s with %s (%d) cannot be found!", noun, prop, id)
	}
	return v
}

// itoaOrEmpty renders a persisted integer as a slot value. Zero means the field
// was absent from the record.
func itoaOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
