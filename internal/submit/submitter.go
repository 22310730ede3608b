// Package submit drives the sequential submission of batched rows to the
// scoring service. Batches go out one at a time, in index order, so load on
// the remote endpoint stays bounded and progress reporting stays monotonic.
package submit

import (
	"context"
	"errors"
	"fmt"

	"github.com/replylab/replyrank/internal/batch"
	"github.com/replylab/replyrank/internal/client"
	"github.com/replylab/replyrank/internal/dataset"
	"github.com/replylab/replyrank/internal/logging"
	"github.com/replylab/replyrank/internal/session"
)

// ErrNoRows indicates a submission attempt with an empty dataset.
var ErrNoRows = errors.New("no rows to submit")

// BatchSubmitter is the client surface the submitter depends on.
type BatchSubmitter interface {
	SubmitBatch(ctx context.Context, b batch.Batch[dataset.Row], meta client.FileMeta) (string, error)
}

// ProgressFunc receives progress updates after each submitted batch.
type ProgressFunc func(p *batch.Progress)

// Options configures a Submitter.
type Options struct {
	// ChunkSize is the number of rows per batch. Zero means
	// batch.DefaultChunkSize; negative values are rejected by Split.
	ChunkSize int

	// KeepPartial controls what happens when a multi-batch submission
	// fails partway. When false (default) the partial session is
	// abandoned: Submit returns a nil session alongside the error. When
	// true the partially-populated session is returned with the error so
	// the caller can poll the jobs that were already accepted. Already
	// submitted batches are never rolled back either way.
	KeepPartial bool

	// OnProgress, when set, is invoked after parsing and after each
	// submitted batch.
	OnProgress ProgressFunc
}

// Submitter submits batched rows as scoring jobs.
type Submitter struct {
	client BatchSubmitter
	opts   Options
}

// New creates a Submitter using the given client.
func New(c BatchSubmitter, opts Options) *Submitter {
	if opts.ChunkSize == 0 {
		opts.ChunkSize = batch.DefaultChunkSize
	}
	return &Submitter{client: c, opts: opts}
}

// Submit splits rows into batches and submits them sequentially. The first
// failing batch aborts the submission with a batch-index-qualified error;
// see Options.KeepPartial for what happens to the session in that case.
func (s *Submitter) Submit(ctx context.Context, rows []dataset.Row, meta session.Meta) (*session.Session, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	batches, err := batch.Split(rows, s.opts.ChunkSize)
	if err != nil {
		return nil, err
	}

	log := logging.ComponentLogger(*logging.FromContext(ctx), "submit")
	log.Info().
		Str("filename", meta.Filename).
		Int("rows", len(rows)).
		Int("batches", len(batches)).
		Msg("starting submission")

	sess := session.New(meta)
	progress := batch.NewProgress(len(rows), len(batches))
	s.notify(progress)

	fileMeta := client.FileMeta{Filename: meta.Filename, TotalRows: meta.TotalRows}

	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			return s.partial(sess, err)
		}

		jobID, err := s.client.SubmitBatch(ctx, b, fileMeta)
		if err != nil {
			log.Error().Err(err).Int("batch_index", b.Index).Msg("submission failed")
			return s.partial(sess, fmt.Errorf("batch %d failed: %w", b.Index, err))
		}

		sess.AddJob(jobID, b.Index)
		progress.BatchSubmitted(len(b.Rows))
		s.notify(progress)
	}

	progress.Finish()
	s.notify(progress)
	log.Info().Int("jobs", len(sess.Jobs())).Msg("submission complete")

	return sess, nil
}

// partial applies the KeepPartial policy to a failed submission.
func (s *Submitter) partial(sess *session.Session, err error) (*session.Session, error) {
	if s.opts.KeepPartial {
		return sess, err
	}
	return nil, err
}

func (s *Submitter) notify(p *batch.Progress) {
	if s.opts.OnProgress != nil {
		s.opts.OnProgress(p)
	}
}
