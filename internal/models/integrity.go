package models

import "time"

// IntegrityReport lists dangling dependents removed by one sweep, keyed by collection.
type IntegrityReport struct {
	Removed    map[string]int64 `json:"removed"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
}

// Total returns the number of rows removed across collections.
func (r IntegrityReport) Total() int64 {
	var total int64
	for _, n := range r.Removed {
		total += n
	}
	return total
}
