package crew

import (
	"SupportCrew/pkg/types"

	"github.com/pkg/errors"
)

const DefaultMaxIterations = 10

// Agent is an immutable, validated agent definition.
type Agent struct {
	spec types.Agent
}

// NewAgent constructs an Agent. Template syntax inside the strings is checked at run time.
func NewAgent(spec types.Agent) (*Agent, error) {
	required := map[string]string{
		"id":        spec.ID,
		"role":      spec.Role,
		"goal":      spec.Goal,
		"backstory": spec.Backstory,
	}
	for _, name := range []string{"id", "role", "goal", "backstory"} {
		if required[name] == "" {
			return nil, errors.Wrapf(ErrMissingField, "agent %q: %s", spec.ID, name)
		}
	}
	if spec.MaxIterations <= 0 {
		spec.MaxIterations = DefaultMaxIterations
	}
	return &Agent{spec: spec}, nil
}

func (a *Agent) ID() string   { return a.spec.ID }
func (a *Agent) Role() string { return a.spec.Role }

// Spec returns a copy of the agent definition.
func (a *Agent) Spec() types.Agent { return a.spec }
