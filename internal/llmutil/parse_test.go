package llmutil

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			input: `{"ok": true}`,
			want:  `{"ok": true}`,
		},
		{
			name:  "json fence",
			input: "Here you go:\n```json\n{\"ok\": true}\n```\nanything after",
			want:  `{"ok": true}`,
		},
		{
			name:  "plain fence",
			input: "```\n{\"ok\": true}\n```",
			want:  `{"ok": true}`,
		},
		{
			name:  "prose around object",
			input: `Sure! The result is {"score": 42} as requested.`,
			want:  `{"score": 42}`,
		},
		{
			name:  "unterminated json fence",
			input: "```json\n{\"ok\": true}",
			want:  `{"ok": true}`,
		},
		{
			name:    "no object",
			input:   "I could not produce a result.",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ExtractJSON(%q) = %q, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractJSON(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
