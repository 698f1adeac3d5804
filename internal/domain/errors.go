package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrConfiguration      = errors.New("invalid configuration")
	ErrProcessing         = errors.New("cycle processing failed")
	ErrHistoryUnavailable = errors.New("history unavailable")
)

type Stage string

const (
	StageScoring    Stage = "scoring"
	StageFocus      Stage = "focus"
	StageAllocation Stage = "allocation"
)

// ProcessingError wraps a failure raised inside a cycle with the cycle it happened in.
type ProcessingError struct {
	CycleID string
	Stage   Stage
	Err     error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("cycle %s: %s: %v", e.CycleID, e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func (e *ProcessingError) Is(target error) bool {
	return target == ErrProcessing
}
