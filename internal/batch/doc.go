// Package batch splits ordered input rows into bounded, index-carrying
// batches for submission as remote scoring jobs, and tracks submission
// progress across the parse and submit phases.
//
// Splitting is a pure function: concatenating the produced batches in index
// order reproduces the input exactly. Each batch carries its own index and
// the overall batch count so the receiving service can report progress.
package batch
