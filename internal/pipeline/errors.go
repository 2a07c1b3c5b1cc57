package pipeline

import (
	"errors"
	"fmt"
)

// Stage names the pipeline step that failed.
type Stage string

const (
	StageExtract Stage = "extract"
	StageProcess Stage = "process"
)

// StageError wraps a media failure with the stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// UserMessage renders a pipeline error the way it is shown in place of a
// transcript.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *StageError
	if errors.As(err, &se) {
		if se.Stage == StageExtract {
			return "Error extracting audio from video: " + se.Err.Error()
		}
		return "Error processing audio: " + se.Err.Error()
	}
	return "Error processing audio: " + err.Error()
}
