// Resume processing status graph:
//
//	uploaded ──► analyzing ──► analyzed ──► analyzing (re-analyze)
//	    ▲            │
//	    └────────────┘ (rollback when persisting analysis fails)
//
// enhanced is reachable from every state, and an enhanced record can be
// re-analyzed. Job matching never changes status.
package models

import "fmt"

type Status string

const (
	StatusUploaded  Status = "uploaded"
	StatusAnalyzing Status = "analyzing"
	StatusAnalyzed  Status = "analyzed"
	StatusEnhanced  Status = "enhanced"
)

// validTransitions lists every allowed (from → to) pair.
var validTransitions = map[Status][]Status{
	StatusUploaded:  {StatusAnalyzing, StatusEnhanced},
	StatusAnalyzing: {StatusAnalyzed, StatusAnalyzing, StatusUploaded, StatusEnhanced},
	StatusAnalyzed:  {StatusAnalyzing, StatusEnhanced},
	StatusEnhanced:  {StatusAnalyzing, StatusEnhanced},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusUploaded, StatusAnalyzing, StatusAnalyzed, StatusEnhanced:
		return st, nil
	}
	return "", fmt.Errorf("unknown resume status %q", s)
}

// CanTransition returns true when moving from → to is permitted.
func CanTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition validates and applies a status change on the record.
func (r *Resume) Transition(to Status) error {
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("invalid status transition %s -> %s", r.Status, to)
	}
	r.Status = to
	return nil
}
