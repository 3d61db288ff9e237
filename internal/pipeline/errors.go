package pipeline

import "fmt"

// FailureKind classifies why an attempt was rejected.
type FailureKind string

const (
	// FailureOracle covers transport and provider errors from the oracle.
	FailureOracle FailureKind = "oracle"
	// FailureExtraction covers responses no recovery strategy could parse.
	FailureExtraction FailureKind = "extraction"
	// FailureValidation covers parsed JSON that is not an architecture graph.
	FailureValidation FailureKind = "validation"
)

// AttemptError is one rejected attempt. Its Reason is fed back to the oracle
// on the next attempt.
type AttemptError struct {
	Kind    FailureKind
	Attempt int
	Reason  string
	Err     error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("attempt %d: %s failure: %s", e.Attempt, e.Kind, e.Reason)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// ExhaustedError reports that every attempt was rejected.
type ExhaustedError struct {
	Attempts []*AttemptError
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return "no attempts made"
	}
	last := e.Attempts[len(e.Attempts)-1]
	return fmt.Sprintf("all %d attempts failed, last: %s failure: %s", len(e.Attempts), last.Kind, last.Reason)
}

func (e *ExhaustedError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1]
}
