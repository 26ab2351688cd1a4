// ABOUTME: Error taxonomy for the indexing and answering pipeline
// ABOUTME: Sentinel errors wrapped with fmt.Errorf %w at call sites
package models

import "errors"

var (
	// ErrExtraction marks an unreadable or corrupt source file. The document
	// is skipped; batch indexing continues.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmptyContent marks extraction that yields no usable text, or
	// chunking that yields zero fragments. The document is skipped.
	ErrEmptyContent = errors.New("no usable content")

	// ErrEmbedding marks a fragment whose vector could not be produced.
	// The fragment is excluded from the persisted set, never stored with a
	// placeholder vector.
	ErrEmbedding = errors.New("embedding failed")

	// ErrPersistence marks a failure inside the atomic replace transaction.
	// The transaction rolls back completely.
	ErrPersistence = errors.New("persistence failed")

	// ErrGeneration marks a model failure during sampling. The answer
	// pipeline degrades to an excerpt fallback unless strict mode is on.
	ErrGeneration = errors.New("generation failed")

	// ErrValidation marks rejected input: an empty query or a vector
	// dimension mismatch, caught before any retrieval or generation work.
	ErrValidation = errors.New("validation failed")
)
