package agent

import (
	"context"
	"fmt"

	"SupportCrew/internal/crew"
	"SupportCrew/pkg/types"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"k8s.io/klog/v2"
)

type EventKind string

const (
	EventStarted    EventKind = "started"
	EventToolCall   EventKind = "tool_call"
	EventToolResult EventKind = "tool_result"
	EventAnswer     EventKind = "answer"
)

// Event is a progress notification emitted while an agent works on a task.
type Event struct {
	Role   string
	Kind   EventKind
	Detail string
}

type Observer func(Event)

// UsageRecorder receives token usage reported by the model.
type UsageRecorder interface {
	RecordUsage(agentID string, promptTokens, completionTokens int)
}

// Runner executes a single task for an agent on the Eino ADK.
type Runner struct {
	Models   map[string]model.ToolCallingChatModel
	Observer Observer
	Usage    UsageRecorder
}

func NewRunner(models map[string]model.ToolCallingChatModel) *Runner {
	return &Runner{Models: models}
}

// TaskRun is one rendered unit of work.
type TaskRun struct {
	Agent       *crew.Agent
	Instruction string
	Input       string
	Tools       []tool.BaseTool
}

func (r *Runner) model(name string) (model.ToolCallingChatModel, error) {
	if name == "" {
		name = types.DefaultModelName
	}
	cm, ok := r.Models[name]
	if !ok {
		return nil, fmt.Errorf("model not found: %s", name)
	}
	return cm, nil
}

func (r *Runner) emit(role string, kind EventKind, detail string) {
	if r.Observer != nil {
		r.Observer(Event{Role: role, Kind: kind, Detail: detail})
	}
}

// RunTask runs the agent until it gives a final answer and returns it.
func (r *Runner) RunTask(ctx context.Context, run TaskRun) (string, error) {
	if run.Agent == nil {
		return "", crew.ErrAgentRequired
	}
	spec := run.Agent.Spec()

	cm, err := r.model(spec.Model)
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", spec.ID, err)
	}

	config := &adk.ChatModelAgentConfig{
		Name:          spec.ID,
		Description:   spec.Role,
		Instruction:   run.Instruction,
		Model:         cm,
		MaxIterations: spec.MaxIterations,
	}
	if len(run.Tools) > 0 {
		config.ToolsConfig = adk.ToolsConfig{
			ToolsNodeConfig: compose.ToolsNodeConfig{Tools: run.Tools},
		}
	}

	chatAgent, err := adk.NewChatModelAgent(ctx, config)
	if err != nil {
		return "", fmt.Errorf("create agent %s: %w", spec.ID, err)
	}
	runner := adk.NewRunner(ctx, adk.RunnerConfig{Agent: chatAgent})

	r.emit(spec.Role, EventStarted, run.Input)
	klog.V(6).Infof("[Runner] agent=%s tools=%d input=%d chars", spec.ID, len(run.Tools), len(run.Input))

	var answer string
	iter := runner.Run(ctx, []adk.Message{schema.UserMessage(run.Input)})
	for {
		event, ok := iter.Next()
		if !ok {
			break
		}
		if event.Err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", fmt.Errorf("agent %s: %w", spec.ID, ctxErr)
			}
			return "", fmt.Errorf("agent %s failed: %w", spec.ID, event.Err)
		}
		if event.Output == nil || event.Output.MessageOutput == nil {
			continue
		}
		msg := event.Output.MessageOutput.Message
		if msg == nil {
			continue
		}
		r.recordUsage(spec.ID, msg)

		switch {
		case msg.Role == schema.Tool:
			r.emit(spec.Role, EventToolResult, truncate(msg.Content, 200))
		case len(msg.ToolCalls) > 0:
			for _, call := range msg.ToolCalls {
				r.emit(spec.Role, EventToolCall, fmt.Sprintf("%s(%s)", call.Function.Name, call.Function.Arguments))
			}
		case msg.Role == schema.Assistant:
			answer = msg.Content
		}
	}

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("agent %s: %w", spec.ID, err)
	}

	answer = CleanOutput(answer)
	if answer == "" {
		return "", fmt.Errorf("agent %s returned no final answer", spec.ID)
	}
	r.emit(spec.Role, EventAnswer, answer)
	return answer, nil
}

func (r *Runner) recordUsage(agentID string, msg *schema.Message) {
	if r.Usage == nil || msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
		return
	}
	u := msg.ResponseMeta.Usage
	r.Usage.RecordUsage(agentID, u.PromptTokens, u.CompletionTokens)
}
