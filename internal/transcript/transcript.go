package transcript

import (
	"fmt"
	"strings"
)

// Fragment kinds that carry a real answer from the speech service.
const (
	KindRecognized = "recognized"
	KindNoMatch    = "no_match"
)

// Fragment is the transcript line produced for one chunk.
type Fragment struct {
	Index int     `json:"index"`
	Start float64 `json:"start"` // seconds
	End   float64 `json:"end"`   // seconds
	Kind  string  `json:"kind"`  // recognized, no_match, canceled, unknown, client_error
	Text  string  `json:"text"`
}

// Line renders the fragment as "[start - end] text".
func (f Fragment) Line() string {
	return fmt.Sprintf("[%s - %s] %s", FormatTimestamp(f.Start), FormatTimestamp(f.End), f.Text)
}

// Heard reports whether the service actually listened to the chunk, as
// opposed to a canceled call, a client error or an unknown status.
func (f Fragment) Heard() bool {
	return f.Kind == KindRecognized || f.Kind == KindNoMatch
}

// Transcript is the ordered result of one transcription pass.
type Transcript struct {
	Language    string     `json:"language"`
	ChunkLength int        `json:"chunk_length"`
	Duration    float64    `json:"duration"`
	Fragments   []Fragment `json:"fragments"`
}

// String concatenates fragment lines in chunk order, one per line.
func (t *Transcript) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	for _, f := range t.Fragments {
		b.WriteString(f.Line())
		b.WriteString("\n")
	}
	return b.String()
}
