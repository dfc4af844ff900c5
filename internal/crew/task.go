package crew

import (
	"SupportCrew/pkg/types"

	"github.com/cloudwego/eino/components/tool"
	"github.com/pkg/errors"
)

// Task binds a task definition to its agent and tools.
type Task struct {
	spec  types.Task
	agent *Agent
	tools []tool.BaseTool
}

func NewTask(spec types.Task, agent *Agent, tools []tool.BaseTool) (*Task, error) {
	if agent == nil {
		return nil, errors.Wrapf(ErrAgentRequired, "task %q", spec.ID)
	}
	if spec.ID == "" {
		return nil, errors.Wrap(ErrMissingField, "task: id")
	}
	if spec.Description == "" {
		return nil, errors.Wrapf(ErrMissingField, "task %q: description", spec.ID)
	}
	if spec.Agent == "" {
		spec.Agent = agent.ID()
	}
	if spec.Agent != agent.ID() {
		return nil, errors.Errorf("task %q names agent %q but is bound to %q", spec.ID, spec.Agent, agent.ID())
	}

	bound := make([]tool.BaseTool, len(tools))
	copy(bound, tools)
	spec.Context = append([]string(nil), spec.Context...)

	return &Task{spec: spec, agent: agent, tools: bound}, nil
}

func (t *Task) ID() string       { return t.spec.ID }
func (t *Task) Agent() *Agent    { return t.agent }
func (t *Task) Spec() types.Task { return t.spec }

// Tools returns the bound tools in binding order.
func (t *Task) Tools() []tool.BaseTool {
	out := make([]tool.BaseTool, len(t.tools))
	copy(out, t.tools)
	return out
}

// DependsOn returns the IDs of the tasks whose output this task consumes.
func (t *Task) DependsOn() []string {
	return append([]string(nil), t.spec.Context...)
}
