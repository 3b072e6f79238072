package domain

import "time"

// Item is one canonical unit of source content before summarization.
type Item struct {
	SourceID    string
	Title       string
	Body        string
	URL         string
	Category    string
	PublishedAt time.Time
	Extra       map[string]string
}

// DigestEntry pairs an Item with its generated summary. Immutable once written.
type DigestEntry struct {
	Item         Item
	Summary      string
	SummarizedAt time.Time
}

// RunStatus is the overall outcome of one track run.
type RunStatus string

const (
	StatusSuccess   RunStatus = "success"
	StatusNoContent RunStatus = "no_content"
	StatusFailure   RunStatus = "failure"
)

// SourceOutcome records what one source produced within a run.
type SourceOutcome struct {
	Source  string
	Fetched int
	Written int
	Err     error
}

// RunReport aggregates per-source outcomes for one track run.
type RunReport struct {
	Track    string
	Date     time.Time
	Outcomes []SourceOutcome
}

// Status collapses outcomes into the run-level result: success if anything
// was written, failure only if every configured source failed, no_content
// otherwise.
func (r RunReport) Status() RunStatus {
	if len(r.Outcomes) == 0 {
		return StatusNoContent
	}

	failed := 0
	for _, o := range r.Outcomes {
		if o.Written > 0 {
			return StatusSuccess
		}
		if o.Err != nil {
			failed++
		}
	}

	if failed == len(r.Outcomes) {
		return StatusFailure
	}
	return StatusNoContent
}
