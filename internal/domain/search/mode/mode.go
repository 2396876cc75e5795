package mode

import (
	"fmt"
	"strings"
)

// Mode is the query interpretation strategy.
type Mode string

// Search mode constants.
const (
	// Natural ranks documents against free text.
	Natural Mode = "natural"
	// Boolean honors +required, -excluded, "phrases", parens and trailing *.
	Boolean Mode = "boolean"
	// Wildcard requires every whitespace-separated term as a prefix.
	Wildcard Mode = "wildcard"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Natural || m == Boolean || m == Wildcard
}

// Parse converts user input into a Mode. Empty input means Natural.
func Parse(s string) (Mode, error) {
	if s == "" {
		return Natural, nil
	}
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("unknown search mode %q", s)
	}
	return m, nil
}

// OrNatural returns m, or Natural when m is not a supported mode.
func (m Mode) OrNatural() Mode {
	if m.IsValid() {
		return m
	}
	return Natural
}
