package batch

import (
	"errors"
	"fmt"
)

// DefaultChunkSize is the default number of rows per batch.
const DefaultChunkSize = 50

// ErrInvalidChunkSize indicates a non-positive chunk size.
var ErrInvalidChunkSize = errors.New("chunk size must be a positive integer")

// Batch is one bounded, order-preserving partition of the input rows.
type Batch[T any] struct {
	// Index is the 0-based position of this batch in submission order.
	Index int

	// TotalBatches is the overall batch count for the submission.
	TotalBatches int

	// Rows holds the batch's rows in original input order.
	Rows []T
}

// Split partitions rows into batches of at most chunkSize rows, preserving
// order. Zero rows yield zero batches. The last batch may be short.
func Split[T any](rows []T, chunkSize int) ([]Batch[T], error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, chunkSize)
	}

	total := totalBatches(len(rows), chunkSize)
	batches := make([]Batch[T], 0, total)

	for i := 0; i < total; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, Batch[T]{
			Index:        i,
			TotalBatches: total,
			Rows:         rows[start:end],
		})
	}

	return batches, nil
}

// totalBatches is ceil(items/chunkSize).
func totalBatches(items, chunkSize int) int {
	n := items / chunkSize
	if items%chunkSize > 0 {
		n++
	}
	return n
}
