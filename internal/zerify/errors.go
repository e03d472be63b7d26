package zerify

import (
	"errors"
	"fmt"
)

// ErrNoInput is returned when a run is requested with nothing to analyze.
var ErrNoInput = errors.New("no URL, text, image, or video provided")

// ErrNoEvidence is returned by the synthesis gate when neither a textual
// nor a visual result exists. This is a fatal failure, not a skip.
var ErrNoEvidence = errors.New("no data available to generate a brief; provide a URL, image, or text")

// ErrRunActive is returned when a run is requested while another is still
// in flight. A pipeline instance executes one run at a time.
var ErrRunActive = errors.New("a verification run is already in progress")

// ErrorKind classifies agent failures at the adapter boundary so retry
// decisions are a type-level match rather than message sniffing.
type ErrorKind string

const (
	// KindRateLimited covers quota exhaustion and 429 responses.
	KindRateLimited ErrorKind = "rate_limited"
	// KindUnavailable covers overload, timeouts, and 5xx responses.
	KindUnavailable ErrorKind = "unavailable"
	// KindBlocked means the content exists but cannot be accessed
	// (paywall, crawler block, empty page).
	KindBlocked ErrorKind = "blocked"
	// KindInvalidInput means the request itself was malformed.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindParse means the model responded outside its output contract.
	KindParse ErrorKind = "parse"
	// KindInternal is everything else.
	KindInternal ErrorKind = "internal"
)

// AgentError wraps a failure from a capability provider with its kind and
// the stage it belongs to.
type AgentError struct {
	Kind  ErrorKind
	Stage StageName
	Err   error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Err)
}

func (e *AgentError) Unwrap() error { return e.Err }

// NewAgentError wraps err for the given stage with a kind tag.
func NewAgentError(stage StageName, kind ErrorKind, err error) *AgentError {
	return &AgentError{Kind: kind, Stage: stage, Err: err}
}

// IsRetryable reports whether the error represents a transient condition
// worth retrying: rate limiting or backend overload.
func IsRetryable(err error) bool {
	var agentErr *AgentError
	if errors.As(err, &agentErr) {
		return agentErr.Kind == KindRateLimited || agentErr.Kind == KindUnavailable
	}
	return false
}
