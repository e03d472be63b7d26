package zerify

import (
	"errors"
	"testing"
)

func TestRunInput_Validate(t *testing.T) {
	if err := (&RunInput{}).Validate(); !errors.Is(err, ErrNoInput) {
		t.Errorf("empty input: err = %v, want ErrNoInput", err)
	}
	if err := (&RunInput{URL: "https://example.com"}).Validate(); err != nil {
		t.Errorf("url input: err = %v, want nil", err)
	}
	if err := (&RunInput{Image: &MediaAsset{Name: "a.png"}}).Validate(); err != nil {
		t.Errorf("image input: err = %v, want nil", err)
	}
}

func TestRunInput_Describe(t *testing.T) {
	tests := []struct {
		name  string
		input RunInput
		want  string
	}{
		{"url wins", RunInput{URL: "https://example.com/a", Text: "also text"}, "https://example.com/a"},
		{"direct text", RunInput{Text: "some claim"}, "Direct Text Input"},
		{"image name", RunInput{Image: &MediaAsset{Name: "photo.jpg"}}, "photo.jpg"},
		{"video name", RunInput{Video: &MediaAsset{Name: "clip.mp4"}}, "clip.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.Describe(); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDomainOf(t *testing.T) {
	tests := []struct {
		rawURL string
		want   string
	}{
		{"https://www.example.com/article/1", "example.com"},
		{"https://news.example.org/path?q=1", "news.example.org"},
		{"", ""},
		{"not a url at all", ""},
	}
	for _, tt := range tests {
		if got := DomainOf(tt.rawURL); got != tt.want {
			t.Errorf("DomainOf(%q) = %q, want %q", tt.rawURL, got, tt.want)
		}
	}
}

func TestGenerateID_UniqueAndPrefixed(t *testing.T) {
	a := GenerateID("run")
	b := GenerateID("run")
	if a == b {
		t.Errorf("two generated IDs collided: %q", a)
	}
	if len(a) <= len("run-") {
		t.Errorf("ID %q too short", a)
	}
}

func TestIsRetryable(t *testing.T) {
	rateLimited := NewAgentError(StageTextualAnalysis, KindRateLimited, errors.New("429"))
	unavailable := NewAgentError(StageTextualAnalysis, KindUnavailable, errors.New("503"))
	parse := NewAgentError(StageTextualAnalysis, KindParse, errors.New("bad json"))

	if !IsRetryable(rateLimited) {
		t.Error("rate-limited error should be retryable")
	}
	if !IsRetryable(unavailable) {
		t.Error("unavailable error should be retryable")
	}
	if IsRetryable(parse) {
		t.Error("parse error should not be retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain error should not be retryable")
	}
}
