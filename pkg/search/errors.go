package search

import "fmt"

// CorpusError marks a failed corpus fetch. It is the one failure that
// cannot degrade to a fallback result (there is nothing to fall back to)
// and surfaces to the caller as a retryable server error.
type CorpusError struct {
	Err error
}

func (e *CorpusError) Error() string {
	return fmt.Sprintf("document corpus unavailable: %v", e.Err)
}

func (e *CorpusError) Unwrap() error {
	return e.Err
}
