package ingest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeCorrected Outcome = "corrected"
	OutcomeFailed    Outcome = "failed"
)

type RowResult struct {
	Row         int
	NPI         string
	Outcome     Outcome
	Corrections []string
	Err         error
}

// Report accumulates per-row outcomes for one file run. Failures and
// corrections are always retained; the full per-row trail only when keepAll
// is set, so a multi-million row file does not pin every result in memory.
type Report struct {
	// RunID identifies this run in logs and published events.
	RunID      string
	File       string
	StartedAt  time.Time
	FinishedAt time.Time

	TotalRows int
	Created   int
	Updated   int
	Skipped   int
	Corrected int
	Failed    int

	Failures    []RowResult
	Corrections []string
	Results     []RowResult

	keepAll bool
}

func NewReport(file string, keepAll bool) *Report {
	return &Report{RunID: uuid.NewString(), File: file, StartedAt: time.Now(), keepAll: keepAll}
}

func (r *Report) Record(res RowResult) {
	r.TotalRows++
	switch res.Outcome {
	case OutcomeCreated:
		r.Created++
	case OutcomeUpdated:
		r.Updated++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeCorrected:
		r.Corrected++
	case OutcomeFailed:
		r.Failed++
		r.Failures = append(r.Failures, res)
	}
	r.Corrections = append(r.Corrections, res.Corrections...)
	if r.keepAll {
		r.Results = append(r.Results, res)
	}
}

func (r *Report) Finish() {
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
}

func (r *Report) Duration() time.Duration {
	end := r.FinishedAt
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(r.StartedAt)
}

func (r *Report) Summary() string {
	return fmt.Sprintf(
		"%s: %d rows in %s: %d created, %d updated, %d skipped, %d corrected, %d failed",
		r.File, r.TotalRows, r.Duration().Round(time.Millisecond),
		r.Created, r.Updated, r.Skipped, r.Corrected, r.Failed,
	)
}
