package models

import "time"

// FailedURL records one skipped input and why it was skipped.
type FailedURL struct {
	URL    string `json:"url"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// BatchResult partitions one batch run into rendered cards and skipped
// inputs. Succeeded preserves the input order of the URLs that produced
// them so pagination stays deterministic.
type BatchResult struct {
	RunID       string      `json:"run_id"`
	Succeeded   []*Card     `json:"-"`
	Failed      []FailedURL `json:"failed"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt time.Time   `json:"completed_at"`
}

func (r *BatchResult) SucceededCount() int {
	return len(r.Succeeded)
}

func (r *BatchResult) FailedCount() int {
	return len(r.Failed)
}
