package memory

import "errors"

// Common errors for the memory package
var (
	// ErrUnknownTask is returned when context is requested for a task that has not produced output
	ErrUnknownTask = errors.New("no output recorded for task")

	// ErrDuplicateOutput is returned when a task records output twice in one run
	ErrDuplicateOutput = errors.New("task output already recorded")
)
