// Package poll schedules result polling for in-flight scoring jobs. A
// coordinator runs timer-driven rounds; each round queries every
// outstanding job concurrently, collects one outcome per job, and only
// after the whole round has returned applies the outcomes to the session.
// Rounds never overlap, and a cancelled round's late responses are
// discarded instead of applied.
package poll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/replylab/replyrank/internal/client"
	"github.com/replylab/replyrank/internal/logging"
	"github.com/replylab/replyrank/internal/score"
	"github.com/replylab/replyrank/internal/session"
)

// DefaultInterval is the delay between polling rounds.
const DefaultInterval = 3 * time.Second

// defaultMaxConcurrency bounds per-round fan-out.
const defaultMaxConcurrency = 8

// State is the coordinator's lifecycle state.
type State int

const (
	// StateIdle means no polling has started.
	StateIdle State = iota

	// StatePolling means the timer loop is armed.
	StatePolling

	// StateAllDone means every job completed and the timer is cancelled.
	StateAllDone

	// StateStopped means polling was cancelled explicitly.
	StateStopped

	// StateFailed means a manual check surfaced a genuine error and
	// polling was halted.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePolling:
		return "polling"
	case StateAllDone:
		return "all-done"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// JobFetcher is the client surface the coordinator depends on.
type JobFetcher interface {
	FetchJob(ctx context.Context, jobID string) (client.JobUpdate, error)
}

// outcomeKind tags a per-job query result.
type outcomeKind int

const (
	outcomePending outcomeKind = iota
	outcomeCompleted
	outcomeFailed
)

// outcome is one job's result within a round. Outcomes are collected for
// the whole round before any of them touches the session.
type outcome struct {
	jobID   string
	kind    outcomeKind
	records []score.ResultRecord
	err     error
}

// Options configures a Coordinator.
type Options struct {
	// Interval between rounds. Zero means DefaultInterval.
	Interval time.Duration

	// MaxConcurrency bounds the per-round fan-out. Zero means a small
	// default.
	MaxConcurrency int

	// OnRound, when set, is called after each applied round with the
	// number of jobs still outstanding.
	OnRound func(outstanding int)
}

// Coordinator polls outstanding jobs for one session.
type Coordinator struct {
	fetcher JobFetcher
	sess    *session.Session
	opts    Options

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}

	// checking is true while a manual CheckOnce round is in flight. It
	// keeps concurrent manual checks from double-running a round and
	// keeps Start from arming the loop mid-check.
	checking bool
}

// New creates a Coordinator for sess. The coordinator starts Idle.
func New(fetcher JobFetcher, sess *session.Session, opts Options) *Coordinator {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = defaultMaxConcurrency
	}
	return &Coordinator{
		fetcher: fetcher,
		sess:    sess,
		opts:    opts,
		state:   StateIdle,
	}
}

// State returns the coordinator's current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done returns a channel closed when the polling loop exits. It returns nil
// if polling never started.
func (c *Coordinator) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Start arms the timer loop. It is a no-op when polling is already running
// or the coordinator has reached a terminal state.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.checking || c.state == StatePolling || c.terminalLocked() {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.state = StatePolling

	go c.run(loopCtx, c.done)
}

// Stop cancels polling. Idempotent; safe to call in any state. A round
// outstanding at the time of the call is discarded, not applied.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if !c.terminalLocked() {
		c.state = StateStopped
	}
}

// CheckOnce runs a single round immediately. Genuine per-job errors (not
// transient inconclusiveness, which is absorbed) halt polling, move the
// coordinator to Failed, and are returned. If the round leaves work
// outstanding, the coordinator promotes itself into continuous polling
// instead of requiring a second manual trigger. Returns true when all jobs
// have completed.
func (c *Coordinator) CheckOnce(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.checking || c.state == StatePolling || c.terminalLocked() {
		state := c.state
		c.mu.Unlock()
		return state == StateAllDone, nil
	}
	// The round runs under a coordinator-owned context so Stop can cancel
	// it mid-flight, exactly like a timer-loop round.
	roundCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.checking = true
	c.mu.Unlock()

	ids := c.sess.OutstandingJobs()
	if len(ids) == 0 {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.checking = false
		c.cancel = nil
		cancel()
		if c.sess.AllDone() && !c.terminalLocked() {
			c.state = StateAllDone
		}
		// Nothing submitted yet leaves the coordinator Idle.
		return c.state == StateAllDone, nil
	}

	outcomes := c.fanOut(roundCtx, ids)

	// Holding c.mu through apply serializes the fan-in with Stop: either
	// Stop landed first and the round is discarded wholesale, or the round
	// is applied in full before Stop can mark the coordinator Stopped.
	c.mu.Lock()
	c.checking = false
	discard := roundCtx.Err() != nil || c.terminalLocked()
	c.cancel = nil
	cancel()
	if discard {
		c.mu.Unlock()
		return false, ctx.Err()
	}

	failures := c.apply(ctx, outcomes)
	if len(failures) > 0 {
		c.state = StateFailed
		c.mu.Unlock()
		return false, fmt.Errorf("checking results: %w", errors.Join(failures...))
	}

	if c.sess.AllDone() {
		c.state = StateAllDone
		c.mu.Unlock()
		return true, nil
	}
	c.mu.Unlock()

	// Work remains: promote the one-shot check into continuous polling.
	c.Start(ctx)
	return false, nil
}

// run is the timer loop. One round per timer expiry; the timer is re-armed
// only after the round's fan-in completes, so rounds never overlap.
func (c *Coordinator) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	log := logging.ComponentLogger(*logging.FromContext(ctx), "poll")
	timer := time.NewTimer(c.opts.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			c.markStopped()
			return
		case <-timer.C:
			outstanding := c.sess.OutstandingJobs()
			outcomes := c.fanOut(ctx, outstanding)

			// A cancellation that arrived while the round was in
			// flight discards the round wholesale. Applying under c.mu
			// serializes the fan-in with Stop.
			c.mu.Lock()
			if ctx.Err() != nil || c.terminalLocked() {
				if !c.terminalLocked() {
					c.state = StateStopped
				}
				c.mu.Unlock()
				return
			}
			failures := c.apply(ctx, outcomes)
			c.mu.Unlock()

			for _, err := range failures {
				log.Warn().Err(err).Msg("job query failed, will retry next round")
			}

			remaining := len(c.sess.OutstandingJobs())
			if c.opts.OnRound != nil {
				c.opts.OnRound(remaining)
			}
			log.Debug().
				Int("queried", len(outstanding)).
				Int("outstanding", remaining).
				Msg("poll round complete")

			if c.sess.AllDone() {
				c.mu.Lock()
				if !c.terminalLocked() {
					c.state = StateAllDone
				}
				if c.cancel != nil {
					c.cancel()
					c.cancel = nil
				}
				c.mu.Unlock()
				return
			}

			timer.Reset(c.opts.Interval)
		}
	}
}

// fanOut queries every job in ids concurrently and returns one outcome per
// job. It always returns a full slice; per-job failures are recorded as
// outcomes, never propagated as errgroup errors, so one bad job cannot
// cancel its siblings' queries.
func (c *Coordinator) fanOut(ctx context.Context, ids []string) []outcome {
	outcomes := make([]outcome, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.MaxConcurrency)

	for i, id := range ids {
		g.Go(func() error {
			update, err := c.fetcher.FetchJob(gctx, id)
			switch {
			case err != nil:
				outcomes[i] = outcome{jobID: id, kind: outcomeFailed, err: err}
			case update.Done:
				outcomes[i] = outcome{jobID: id, kind: outcomeCompleted, records: update.Records}
			default:
				outcomes[i] = outcome{jobID: id, kind: outcomePending}
			}
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}

// apply folds a completed round's outcomes into the session and returns the
// genuine per-job errors encountered. Pending outcomes change nothing.
func (c *Coordinator) apply(ctx context.Context, outcomes []outcome) []error {
	log := logging.ComponentLogger(*logging.FromContext(ctx), "poll")

	var failures []error
	for _, o := range outcomes {
		switch o.kind {
		case outcomeCompleted:
			c.sess.MarkDone(o.jobID)
			c.sess.MergeRecords(o.records)
			log.Debug().Str("job_id", o.jobID).Int("records", len(o.records)).Msg("job complete")
		case outcomeFailed:
			c.sess.MarkFailed(o.jobID)
			failures = append(failures, fmt.Errorf("job %s: %w", o.jobID, o.err))
		case outcomePending:
			// Not news. Keep waiting.
		}
	}
	return failures
}

// markStopped moves the coordinator to Stopped unless it already reached a
// terminal state.
func (c *Coordinator) markStopped() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.terminalLocked() {
		c.state = StateStopped
	}
}

// terminalLocked reports whether the coordinator is in a terminal state.
// Callers must hold c.mu.
func (c *Coordinator) terminalLocked() bool {
	return c.state == StateAllDone || c.state == StateStopped || c.state == StateFailed
}
