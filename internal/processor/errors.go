package processor

import (
	"errors"
	"fmt"
)

var (
	// ErrExternalCapability wraps failures of the injected noise reducer or compressor
	ErrExternalCapability = errors.New("external capability failure")

	// ErrInvalidRun is returned for runs with impossible stream parameters
	ErrInvalidRun = errors.New("invalid pipeline run")

	// ErrEmptyBuffer is returned when a decoded file holds no samples
	ErrEmptyBuffer = errors.New("no audio samples")
)

// StageError reports which stage aborted a run
type StageError struct {
	Stage StageID
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage.Label(), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
