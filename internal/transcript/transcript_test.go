package transcript

import (
	"regexp"
	"testing"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{"zero", 0, "00:00:00"},
		{"one hour one minute one second", 3661, "01:01:01"},
		{"half minute", 30, "00:00:30"},
		{"truncates fraction", 65.9, "00:01:05"},
		{"beyond a day", 100 * 3600, "100:00:00"},
		{"negative clamps", -5, "00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTimestamp(tt.seconds); got != tt.want {
				t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestFormatTimestampShape(t *testing.T) {
	shape := regexp.MustCompile(`^\d{2,}:\d{2}:\d{2}$`)
	for s := 0.0; s < 200000; s += 997.3 {
		first := FormatTimestamp(s)
		if !shape.MatchString(first) {
			t.Fatalf("FormatTimestamp(%v) = %q, does not match HH:MM:SS", s, first)
		}
		if second := FormatTimestamp(s); second != first {
			t.Fatalf("FormatTimestamp(%v) not stable: %q then %q", s, first, second)
		}
	}
}

func TestTranscriptString(t *testing.T) {
	tr := &Transcript{
		Language:    "en-US",
		ChunkLength: 30,
		Duration:    65,
		Fragments: []Fragment{
			{Index: 0, Start: 0, End: 30, Kind: "recognized", Text: "hello there"},
			{Index: 1, Start: 30, End: 60, Kind: "no_match", Text: "No match found."},
			{Index: 2, Start: 60, End: 65, Kind: "recognized", Text: "goodbye"},
		},
	}

	want := "[00:00:00 - 00:00:30] hello there\n" +
		"[00:00:30 - 00:01:00] No match found.\n" +
		"[00:01:00 - 00:01:05] goodbye\n"
	if got := tr.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestNilTranscriptString(t *testing.T) {
	var tr *Transcript
	if got := tr.String(); got != "" {
		t.Errorf("nil transcript rendered %q", got)
	}
}
