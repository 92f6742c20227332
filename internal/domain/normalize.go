package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// NameKey returns the comparison key for a catalogue name (tag, location tag,
// service type, vendor). Two names with equal keys are the same entry:
//   - leading/trailing whitespace is dropped
//   - inner whitespace runs collapse to one space
//   - letters are Unicode case-folded
func NameKey(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	// Caser values are stateful, so a fresh one is created per call.
	return cases.Fold().String(name)
}

// SplitList splits a comma-separated cell into trimmed, non-empty items.
func SplitList(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
