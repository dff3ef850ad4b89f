package audit

import "time"

// Entry represents a single audit log record: one top-level evaluation.
type Entry struct {
	Seq      uint64    `json:"seq"`
	Time     time.Time `json:"ts"`
	PrevHash string    `json:"prev_hash"`
	RunID    string    `json:"run_id"`           // shared by every evaluation of one invocation
	Tree     string    `json:"tree"`             // rendered command tree
	Source   string    `json:"source,omitempty"` // document file, or "exec"
	Status   int       `json:"status"`           // encoded exit status
	Duration float64   `json:"duration_ms"`      // evaluation time in milliseconds
	Cwd      string    `json:"cwd"`              // working directory at start
	Hash     string    `json:"hash"`             // SHA-256 of this entry (with hash field empty)
}

// Record is what the caller knows about a finished evaluation.
type Record struct {
	RunID    string
	Tree     string
	Source   string
	Status   int
	Duration time.Duration
	Cwd      string
}
