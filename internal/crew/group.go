package crew

import (
	"context"
	"strings"

	"SupportCrew/pkg/types"

	"github.com/cloudwego/eino/components/tool"
	"github.com/pkg/errors"
)

type Options struct {
	Memory  bool
	Verbose bool
}

// Group is an assembled crew: member agents plus tasks in execution order.
type Group struct {
	agents []*Agent
	tasks  []*Task
	order  []*Task
	opts   Options
}

// Assemble validates that every task's agent is a member and that task
// dependencies resolve, then fixes the execution order.
func Assemble(agents []*Agent, tasks []*Task, opts Options) (*Group, error) {
	members := make(map[*Agent]bool, len(agents))
	ids := make(map[string]bool, len(agents))
	for _, a := range agents {
		if a == nil {
			return nil, errors.Wrap(ErrMissingField, "assemble: nil agent")
		}
		if ids[a.ID()] {
			return nil, errors.Wrapf(ErrDuplicateID, "agent %q", a.ID())
		}
		ids[a.ID()] = true
		members[a] = true
	}

	taskIDs := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t == nil {
			return nil, errors.Wrap(ErrMissingField, "assemble: nil task")
		}
		if !members[t.Agent()] {
			return nil, errors.Wrapf(ErrAgentNotInGroup, "task %q agent %q", t.ID(), t.Agent().ID())
		}
		if taskIDs[t.ID()] {
			return nil, errors.Wrapf(ErrDuplicateID, "task %q", t.ID())
		}
		taskIDs[t.ID()] = true
	}

	order, err := executionOrder(tasks)
	if err != nil {
		return nil, err
	}

	return &Group{
		agents: append([]*Agent(nil), agents...),
		tasks:  append([]*Task(nil), tasks...),
		order:  order,
		opts:   opts,
	}, nil
}

// executionOrder sorts tasks topologically. Among ready tasks the earliest declared runs first.
func executionOrder(tasks []*Task) ([]*Task, error) {
	known := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID()] = true
	}
	for _, t := range tasks {
		for _, dep := range t.DependsOn() {
			if !known[dep] {
				return nil, errors.Wrapf(ErrUnknownDependency, "task %q needs %q", t.ID(), dep)
			}
		}
	}

	done := make(map[string]bool, len(tasks))
	order := make([]*Task, 0, len(tasks))
	for len(order) < len(tasks) {
		progressed := false
		for _, t := range tasks {
			if done[t.ID()] || !ready(t, done) {
				continue
			}
			done[t.ID()] = true
			order = append(order, t)
			progressed = true
			break
		}
		if !progressed {
			var blocked []string
			for _, t := range tasks {
				if !done[t.ID()] {
					blocked = append(blocked, t.ID())
				}
			}
			return nil, errors.Wrap(ErrDependencyCycle, strings.Join(blocked, ", "))
		}
	}
	return order, nil
}

func ready(t *Task, done map[string]bool) bool {
	for _, dep := range t.DependsOn() {
		if !done[dep] {
			return false
		}
	}
	return true
}

func (g *Group) Agents() []*Agent    { return append([]*Agent(nil), g.agents...) }
func (g *Group) Order() []*Task      { return append([]*Task(nil), g.order...) }
func (g *Group) MemoryEnabled() bool { return g.opts.Memory }
func (g *Group) Verbose() bool       { return g.opts.Verbose }

// Agent looks up a member by ID.
func (g *Group) Agent(id string) *Agent {
	for _, a := range g.agents {
		if a.ID() == id {
			return a
		}
	}
	return nil
}

// Templates returns every template string of member agents and tasks.
func (g *Group) Templates() []string {
	var out []string
	for _, a := range g.agents {
		spec := a.Spec()
		out = append(out, spec.Templates()...)
	}
	for _, t := range g.tasks {
		spec := t.Spec()
		out = append(out, spec.Templates()...)
	}
	return out
}

// Placeholders lists every input name the group needs at run time.
func (g *Group) Placeholders() []string {
	return Placeholders(g.Templates()...)
}

// CheckInputs fails with ErrMissingInput naming every absent placeholder.
func (g *Group) CheckInputs(inputs map[string]string) error {
	if missing := MissingInputs(inputs, g.Templates()...); len(missing) > 0 {
		return errors.Wrap(ErrMissingInput, strings.Join(missing, ", "))
	}
	return nil
}

// DefineAgents constructs every agent declared in config, keyed by ID.
func DefineAgents(config *types.CrewConfig) (map[string]*Agent, error) {
	agents := make(map[string]*Agent, len(config.Agents))
	for _, spec := range config.Agents {
		a, err := NewAgent(spec)
		if err != nil {
			return nil, err
		}
		agents[a.ID()] = a
	}
	return agents, nil
}

// CreateTasks constructs the declared tasks, binding agents and tools by ID.
func CreateTasks(config *types.CrewConfig, agents map[string]*Agent, tools map[string]tool.BaseTool) ([]*Task, error) {
	tasks := make([]*Task, 0, len(config.Tasks))
	for _, spec := range config.Tasks {
		var bound []tool.BaseTool
		for _, id := range spec.Tools {
			t, ok := tools[id]
			if !ok {
				return nil, errors.Errorf("task %q: tool %q is not defined", spec.ID, id)
			}
			bound = append(bound, t)
		}
		task, err := NewTask(spec, agents[spec.Agent], bound)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Members returns the crew member agents in the order the config lists them.
func Members(config *types.CrewConfig, agents map[string]*Agent) ([]*Agent, error) {
	var members []*Agent
	for _, id := range config.MemberIDs() {
		a, ok := agents[id]
		if !ok {
			return nil, errors.Errorf("crew member %q is not defined", id)
		}
		members = append(members, a)
	}
	return members, nil
}

// Build runs the define, create and assemble steps for a parsed config.
func Build(config *types.CrewConfig, tools map[string]tool.BaseTool) (*Group, error) {
	agents, err := DefineAgents(config)
	if err != nil {
		return nil, err
	}
	tasks, err := CreateTasks(config, agents, tools)
	if err != nil {
		return nil, err
	}
	members, err := Members(config, agents)
	if err != nil {
		return nil, err
	}
	return Assemble(members, tasks, Options{Memory: config.Crew.Memory, Verbose: config.Crew.Verbose})
}

// RenderAll renders each template with inputs, in order.
func RenderAll(ctx context.Context, inputs map[string]string, templates ...string) ([]string, error) {
	out := make([]string, len(templates))
	for i, tpl := range templates {
		s, err := Render(ctx, tpl, inputs)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
