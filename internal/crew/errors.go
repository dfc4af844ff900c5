package crew

import "github.com/pkg/errors"

var (
	ErrAgentRequired     = errors.New("task requires an agent")
	ErrAgentNotInGroup   = errors.New("task agent is not a member of the crew")
	ErrDuplicateID       = errors.New("duplicate id")
	ErrUnknownDependency = errors.New("task depends on an unknown task")
	ErrDependencyCycle   = errors.New("task dependencies form a cycle")
	ErrMissingInput      = errors.New("missing run input")
	ErrMissingField      = errors.New("missing required field")
)
