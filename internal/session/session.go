// Package session owns the mutable state of one upload-to-download cycle:
// the submitted jobs, the reconciled result set, and its summary. Resetting
// is done by constructing a fresh Session and abandoning the old one, which
// makes "a new file cancels everything" a single assignment at the caller.
package session

import (
	"sync"

	"github.com/replylab/replyrank/internal/score"
)

// JobStatus is the lifecycle state of one remote scoring job.
type JobStatus int

const (
	// StatusPending means the job has not yet produced results.
	StatusPending JobStatus = iota

	// StatusDone means results were received and merged. Terminal.
	StatusDone

	// StatusFailed means the last status query for the job failed. The
	// job stays in the retry pool and may still become Done.
	StatusFailed
)

// String returns the lowercase status name.
func (s JobStatus) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Job ties an opaque remote job identifier to the batch it carries.
type Job struct {
	ID         string
	BatchIndex int
	Status     JobStatus
}

// Meta describes the uploaded file the session was created for.
type Meta struct {
	Filename  string
	TotalRows int
}

// Session is the process-wide state for one scoring cycle. All methods are
// safe for concurrent use, though by design only the submitter and the
// poll coordinator's fan-in step mutate it.
type Session struct {
	mu sync.RWMutex

	meta    Meta
	jobs    map[string]*Job
	order   []string
	results score.ResultSet
	summary score.Summary
}

// New creates an empty session for the given file.
func New(meta Meta) *Session {
	return &Session{
		meta: meta,
		jobs: make(map[string]*Job),
	}
}

// Meta returns the session's file metadata.
func (s *Session) Meta() Meta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta
}

// AddJob records a newly submitted job. Duplicate identifiers are ignored;
// job identity is the opaque string.
func (s *Session) AddJob(id string, batchIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return
	}
	s.jobs[id] = &Job{ID: id, BatchIndex: batchIndex, Status: StatusPending}
	s.order = append(s.order, id)
}

// OutstandingJobs returns, in submission order, the identifiers of every
// job that is not Done. Failed jobs are included: they are retried on the
// next round.
func (s *Session) OutstandingJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for _, id := range s.order {
		if s.jobs[id].Status != StatusDone {
			out = append(out, id)
		}
	}
	return out
}

// MarkDone transitions a job to Done. Done is terminal; marking an unknown
// job is a no-op.
func (s *Session) MarkDone(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, ok := s.jobs[id]; ok {
		j.Status = StatusDone
	}
}

// MarkFailed flags a job's last query as failed. Done jobs never regress.
func (s *Session) MarkFailed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if j, ok := s.jobs[id]; ok && j.Status != StatusDone {
		j.Status = StatusFailed
	}
}

// JobStatus returns the status of the given job and whether it exists.
func (s *Session) JobStatus(id string) (JobStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[id]
	if !ok {
		return StatusPending, false
	}
	return j.Status, true
}

// Jobs returns a snapshot of all jobs in submission order.
func (s *Session) Jobs() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Job, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.jobs[id])
	}
	return out
}

// AllDone reports whether every submitted job has completed.
func (s *Session) AllDone() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.order) == 0 {
		return false
	}
	for _, j := range s.jobs {
		if j.Status != StatusDone {
			return false
		}
	}
	return true
}

// MergeRecords folds newly received records into the result set and
// recomputes the summary.
func (s *Session) MergeRecords(records []score.ResultRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results, s.summary = score.Merge(s.results, records)
}

// Results returns a copy of the current result set.
func (s *Session) Results() score.ResultSet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(score.ResultSet, len(s.results))
	copy(out, s.results)
	return out
}

// Summary returns the current aggregate statistics.
func (s *Session) Summary() score.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}
