package stt

import (
	"fmt"

	"golang.org/x/text/language"
)

// ResolveLanguage validates a BCP-47 tag and returns its canonical form.
// An empty code falls back to def.
func ResolveLanguage(code, def string) (string, error) {
	if code == "" {
		code = def
	}
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	if tag.IsRoot() {
		return "", fmt.Errorf("invalid language code %q: no language subtag", code)
	}
	return tag.String(), nil
}

// isoLanguage reduces a BCP-47 tag such as "en-US" to the ISO-639-1 code
// the transcription API expects. Unparseable input yields "" (auto-detect).
func isoLanguage(code string) string {
	tag, err := language.Parse(code)
	if err != nil || tag.IsRoot() {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}
