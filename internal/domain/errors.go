package domain

import "errors"

var (
	// ErrNotFound marks a zero-row result where exactly one record was expected.
	ErrNotFound = errors.New("not found")
	// ErrFetchFailed marks a network/service failure on a read; recoverable,
	// surfaced once, never retried.
	ErrFetchFailed = errors.New("fetch failed")
)
