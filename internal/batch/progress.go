package batch

import (
	"sync"
	"time"
)

const (
	// parseFraction is the share of submission progress attributed to the
	// initial parse/chunk phase.
	parseFraction = 0.10

	// percentMultiplier converts a ratio to a percentage.
	percentMultiplier = 100

	// submitCapPercent is the ceiling reported while the submission
	// sequence is still running. 100% is only reported once Finish is
	// called.
	submitCapPercent = 99.0
)

// Progress tracks submission progress for one upload cycle. Progress is
// reported as an initial fixed parse fraction plus a fraction proportional
// to batches submitted, and stays below 100% until the entire submission
// sequence completes. It is safe for concurrent use.
type Progress struct {
	mu sync.RWMutex

	totalRows        int
	totalBatches     int
	submittedRows    int
	submittedBatches int
	finished         bool

	startTime      time.Time
	lastUpdateTime time.Time
}

// NewProgress creates a progress tracker for a submission of totalRows rows
// across totalBatches batches. The parse phase is considered complete at
// construction time.
func NewProgress(totalRows, totalBatches int) *Progress {
	now := time.Now()
	return &Progress{
		totalRows:      totalRows,
		totalBatches:   totalBatches,
		startTime:      now,
		lastUpdateTime: now,
	}
}

// BatchSubmitted records one successfully submitted batch of rowCount rows.
func (p *Progress) BatchSubmitted(rowCount int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.submittedBatches++
	p.submittedRows += rowCount
	p.lastUpdateTime = time.Now()
}

// Finish marks the whole submission sequence complete, releasing the 100%
// cap.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = true
	p.lastUpdateTime = time.Now()
}

// Percent returns submission progress in [0,100]. The parse fraction is
// granted up front; the remainder scales with submitted batches and is
// capped just below 100 until Finish.
func (p *Progress) Percent() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.finished {
		return percentMultiplier
	}
	if p.totalBatches == 0 {
		return parseFraction * percentMultiplier
	}

	ratio := float64(p.submittedBatches) / float64(p.totalBatches)
	pct := (parseFraction + (1-parseFraction)*ratio) * percentMultiplier
	if pct > submitCapPercent {
		pct = submitCapPercent
	}
	return pct
}

// SubmittedBatches returns the number of batches submitted so far.
func (p *Progress) SubmittedBatches() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.submittedBatches
}

// SubmittedRows returns the number of rows submitted so far.
func (p *Progress) SubmittedRows() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.submittedRows
}

// TotalBatches returns the overall batch count.
func (p *Progress) TotalBatches() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.totalBatches
}

// ElapsedTime returns time since the tracker was created.
func (p *Progress) ElapsedTime() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return time.Since(p.startTime)
}
