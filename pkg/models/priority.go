package models

import (
	"fmt"
	"strings"
)

// Priority is the importance a consumer attaches to a request. It is carried
// through the request path and logged, but does not change arbitration:
// grants are first-come-first-served under the capacity reserve.
type Priority int

const (
	// PriorityCritical is reserved for system critical consumers.
	PriorityCritical Priority = iota
	// PriorityHigh is for user-facing consumers.
	PriorityHigh
	// PriorityNormal is the default for standard background consumers.
	PriorityNormal
	// PriorityLow is for batch, non-urgent consumers.
	PriorityLow
	// PriorityBackground is for idle and maintenance consumers.
	PriorityBackground
)

var priorityNames = map[Priority]string{
	PriorityCritical:   "CRITICAL",
	PriorityHigh:       "HIGH",
	PriorityNormal:     "NORMAL",
	PriorityLow:        "LOW",
	PriorityBackground: "BACKGROUND",
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// ParsePriority parses a case-insensitive priority name. An empty string
// yields PriorityNormal, matching the behavior of requests that omit it.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityNormal, nil
	}
	for p, name := range priorityNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return PriorityNormal, fmt.Errorf("unknown priority %q", s)
}

func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
