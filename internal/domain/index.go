package domain

import "time"

// SyncStats holds statistics from one reconciliation run
type SyncStats struct {
	Fetched        int           `json:"fetched"`         // remote items seen
	Created        int           `json:"created"`         // local entities created
	Updated        int           `json:"updated"`         // local entities updated in place
	Failed         int           `json:"failed"`          // items whose local write failed
	SkippedParents int           `json:"skipped_parents"` // parents whose remote fetch failed
	Duration       time.Duration `json:"duration_ns"`
}

// Add accumulates other into s (Duration excluded)
func (s *SyncStats) Add(other SyncStats) {
	s.Fetched += other.Fetched
	s.Created += other.Created
	s.Updated += other.Updated
	s.Failed += other.Failed
	s.SkippedParents += other.SkippedParents
}
