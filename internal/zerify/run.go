package zerify

import (
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// DomainOf returns the hostname of a URL with any www. prefix stripped,
// or "" when the input is empty or unparseable.
func DomainOf(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// MediaAsset is an uploaded image or a single extracted video frame.
type MediaAsset struct {
	Name     string `json:"name,omitempty"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// RunInput is what a verification run operates on. At least one of URL,
// Text, Image, or Video must be present.
type RunInput struct {
	URL   string      `json:"url,omitempty"`
	Text  string      `json:"text,omitempty"`
	Image *MediaAsset `json:"image,omitempty"`
	Video *MediaAsset `json:"video,omitempty"`
}

// Validate rejects an input with nothing to analyze. Runs with invalid
// input never start; no stage is touched.
func (in *RunInput) Validate() error {
	if in.URL == "" && in.Text == "" && in.Image == nil && in.Video == nil {
		return ErrNoInput
	}
	return nil
}

// Describe returns the label stored in history for this input: the URL,
// "Direct Text Input", or the uploaded file's name.
func (in *RunInput) Describe() string {
	switch {
	case in.URL != "":
		return in.URL
	case in.Text != "":
		return "Direct Text Input"
	case in.Image != nil:
		return in.Image.Name
	case in.Video != nil:
		return in.Video.Name
	}
	return ""
}

// HistoryEntry is the archived record of one completed run. It is written
// exactly once, when final synthesis completes, and never mutated.
type HistoryEntry struct {
	ID        string        `json:"id"`
	Input     string        `json:"input"`
	Report    string        `json:"report"`
	Timestamp time.Time     `json:"timestamp"`
	State     PipelineState `json:"pipeline_state"`
	Results   *Analysis     `json:"results"`
}

// NewHistoryEntry builds an entry for a finished run. The ID is derived
// from the completion time, which also keeps history sortable.
func NewHistoryEntry(input, report string, state PipelineState, results *Analysis) *HistoryEntry {
	now := time.Now().UTC()
	return &HistoryEntry{
		ID:        now.Format(time.RFC3339Nano),
		Input:     input,
		Report:    report,
		Timestamp: now,
		State:     state,
		Results:   results,
	}
}

// MisinformationRecord flags a domain whose trust score fell below the
// misinformation threshold during a run. Keyed by domain; upserted.
type MisinformationRecord struct {
	Domain     string    `json:"domain"`
	URL        string    `json:"url"`
	TrustScore int       `json:"trust_score"`
	Timestamp  time.Time `json:"timestamp"`
}

// MisinformationThreshold is the trust score below which a source is
// logged to the misinformation record store.
const MisinformationThreshold = 40

// RetryPolicy defines bounded retry with exponential backoff for
// rate-limited agent calls.
type RetryPolicy struct {
	MaxAttempts   int           `json:"max_attempts"   yaml:"max_attempts"`
	InitialDelay  time.Duration `json:"initial_delay"  yaml:"initial_delay"`
	MaxDelay      time.Duration `json:"max_delay"      yaml:"max_delay"`
	BackoffFactor float64       `json:"backoff_factor" yaml:"backoff_factor"`
}

// DefaultRetryPolicy returns the standard policy: three attempts with
// 2s and 4s waits between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		InitialDelay:  2 * time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// GenerateID generates a random ID with the given prefix.
func GenerateID(prefix string) string {
	b := make([]byte, 8)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}
