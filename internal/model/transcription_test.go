package model

import (
	"testing"

	"vidscribe/internal/transcript"
)

func TestReusable(t *testing.T) {
	frag := func(kind string) transcript.Fragment { return transcript.Fragment{Kind: kind} }

	tests := []struct {
		name      string
		status    string
		fragments []transcript.Fragment
		want      bool
	}{
		{"recognized", StatusCompleted, []transcript.Fragment{frag("recognized"), frag("no_match")}, true},
		{"only silence", StatusCompleted, []transcript.Fragment{frag("no_match")}, true},
		{"canceled chunk", StatusCompleted, []transcript.Fragment{frag("recognized"), frag("canceled")}, false},
		{"client error", StatusCompleted, []transcript.Fragment{frag("client_error")}, false},
		{"unknown status", StatusCompleted, []transcript.Fragment{frag("unknown")}, false},
		{"no fragments", StatusCompleted, nil, false},
		{"failed", StatusFailed, []transcript.Fragment{frag("recognized")}, false},
		{"processing", StatusProcessing, []transcript.Fragment{frag("recognized")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Transcription{Status: tt.status, Fragments: tt.fragments}
			if got := rec.Reusable(); got != tt.want {
				t.Errorf("Reusable() = %v, want %v", got, tt.want)
			}
		})
	}
}
