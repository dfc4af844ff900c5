package engine

import (
	"context"
	"time"

	"SupportCrew/internal/agent"
	"SupportCrew/internal/crew"
	"SupportCrew/internal/memory"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// TaskResult is the output of one completed task.
type TaskResult struct {
	TaskID    string
	AgentID   string
	AgentRole string
	Output    string
	Duration  time.Duration
}

// Result is the outcome of a crew run. Output is the final task's answer.
type Result struct {
	RunID       string
	Status      Status
	Output      string
	TaskOutputs []TaskResult
	Usage       Usage
	Err         error
	Duration    time.Duration
}

func (r *Result) Succeeded() bool { return r.Status == StatusSucceeded }

// LongTermMemory stores task outputs and recalls the relevant ones.
// Implemented by vectorstore.WorkflowVectorStore.
type LongTermMemory interface {
	StoreTaskOutput(ctx context.Context, taskID, agentRole, content string) error
	QueryRelevantContext(ctx context.Context, query string, topK int) (string, error)
}

type Options struct {
	Models      map[string]model.ToolCallingChatModel
	Memory      LongTermMemory // Consulted only when the group has memory enabled
	MemoryTopK  int
	Observer    agent.Observer // Receives events of verbose agents
	TaskTimeout time.Duration  // Zero means no per-task limit
	RunID       string         // Generated when empty
}

type executor struct {
	group        *crew.Group
	inputs       map[string]string
	opts         Options
	runner       *agent.Runner
	usage        *UsageTracker
	shortTerm    *memory.ShortTermMemory
	instructions map[string]string // Agent ID -> rendered system prompt
}

// Run executes the group's tasks in order with the given inputs.
// It never panics on run errors; failures are reported in the Result.
func Run(ctx context.Context, group *crew.Group, inputs map[string]string, opts Options) *Result {
	start := time.Now()
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	result := &Result{RunID: opts.RunID, Status: StatusFailed}

	if group == nil {
		result.Err = errors.Wrap(crew.ErrMissingField, "run: nil group")
		return result
	}

	e := &executor{
		group:     group,
		inputs:    inputs,
		opts:      opts,
		usage:     NewUsageTracker(),
		shortTerm: memory.NewShortTermMemory(),
	}
	e.runner = agent.NewRunner(opts.Models)
	e.runner.Usage = e.usage
	e.runner.Observer = e.observe

	klog.V(2).Infof("[engine.Run] run=%s tasks=%d memory=%v", opts.RunID, len(group.Order()), group.MemoryEnabled())
	err := e.run(ctx, result)

	result.Usage = e.usage.Snapshot()
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		klog.Errorf("[engine.Run] run=%s failed: %v", opts.RunID, err)
		return result
	}
	result.Status = StatusSucceeded
	return result
}

func (e *executor) run(ctx context.Context, result *Result) error {
	if err := e.group.CheckInputs(e.inputs); err != nil {
		return err
	}
	if err := e.renderInstructions(ctx); err != nil {
		return err
	}

	for _, task := range e.group.Order() {
		tr, err := e.runTask(ctx, task)
		if err != nil {
			return errors.Wrapf(err, "task %s", task.ID())
		}
		result.TaskOutputs = append(result.TaskOutputs, tr)
	}
	result.Output = e.shortTerm.GetLastOutput()
	klog.V(2).Infof("[engine.Run] run=%s completed %d tasks", e.opts.RunID, e.shortTerm.Count())
	return nil
}

func (e *executor) renderInstructions(ctx context.Context) error {
	e.instructions = make(map[string]string)
	for _, a := range e.group.Agents() {
		spec := a.Spec()
		rendered, err := crew.RenderAll(ctx, e.inputs, spec.Role, spec.Goal, spec.Backstory)
		if err != nil {
			return errors.Wrapf(err, "agent %s", a.ID())
		}
		e.instructions[a.ID()] = agent.BuildInstruction(rendered[0], rendered[1], rendered[2])
	}
	return nil
}

func (e *executor) runTask(ctx context.Context, task *crew.Task) (TaskResult, error) {
	start := time.Now()
	spec := task.Spec()
	member := task.Agent()

	rendered, err := crew.RenderAll(ctx, e.inputs, spec.Description, spec.ExpectedOutput)
	if err != nil {
		return TaskResult{}, err
	}

	prompt := agent.TaskPrompt{Description: rendered[0], ExpectedOutput: rendered[1]}
	if prompt.Context, err = e.shortTerm.GetContext(task.DependsOn()); err != nil {
		return TaskResult{}, err
	}
	prompt.Memory = e.recall(ctx, rendered[0])

	if e.opts.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.TaskTimeout)
		defer cancel()
	}

	output, err := e.runner.RunTask(ctx, agent.TaskRun{
		Agent:       member,
		Instruction: e.instructions[member.ID()],
		Input:       prompt.String(),
		Tools:       e.toolsFor(task),
	})
	if err != nil {
		return TaskResult{}, err
	}

	if err := e.shortTerm.Record(task.ID(), member.Role(), output); err != nil {
		return TaskResult{}, err
	}
	e.remember(ctx, task.ID(), member.Role(), output)

	return TaskResult{
		TaskID:    task.ID(),
		AgentID:   member.ID(),
		AgentRole: member.Role(),
		Output:    output,
		Duration:  time.Since(start),
	}, nil
}

// toolsFor returns the task's bound tools plus the delegation tool when the
// agent may delegate and has coworkers.
func (e *executor) toolsFor(task *crew.Task) []tool.BaseTool {
	tools := task.Tools()
	member := task.Agent()
	if !member.Spec().AllowDelegation {
		return tools
	}

	var coworkers []agent.Coworker
	for _, a := range e.group.Agents() {
		if a == member {
			continue
		}
		coworkers = append(coworkers, agent.Coworker{Agent: a, Instruction: e.instructions[a.ID()]})
	}
	if len(coworkers) == 0 {
		return tools
	}
	return append(tools, agent.NewDelegateTool(e.runner, coworkers))
}

func (e *executor) recall(ctx context.Context, query string) string {
	if !e.group.MemoryEnabled() || e.opts.Memory == nil {
		return ""
	}
	relevant, err := e.opts.Memory.QueryRelevantContext(ctx, query, e.opts.MemoryTopK)
	if err != nil {
		klog.Warningf("[engine] memory query failed: %v", err)
		return ""
	}
	return relevant
}

func (e *executor) remember(ctx context.Context, taskID, role, output string) {
	if !e.group.MemoryEnabled() || e.opts.Memory == nil {
		return
	}
	if err := e.opts.Memory.StoreTaskOutput(ctx, taskID, role, output); err != nil {
		klog.Warningf("[engine] memory store failed for %s: %v", taskID, err)
	}
}

func (e *executor) observe(ev agent.Event) {
	if e.opts.Observer == nil {
		return
	}
	if e.group.Verbose() || e.verboseRole(ev.Role) {
		e.opts.Observer(ev)
	}
}

func (e *executor) verboseRole(role string) bool {
	for _, a := range e.group.Agents() {
		if a.Role() == role {
			return a.Spec().Verbose
		}
	}
	return false
}
