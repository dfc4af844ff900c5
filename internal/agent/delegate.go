package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"SupportCrew/internal/crew"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

const DelegateToolName = "ask_coworker"

// Coworker is a crew member that can be asked a question.
type Coworker struct {
	Agent       *crew.Agent
	Instruction string
}

// DelegateTool lets an agent put a question to another crew member.
// The coworker answers without tools.
type DelegateTool struct {
	runner    *Runner
	coworkers []Coworker
}

func NewDelegateTool(runner *Runner, coworkers []Coworker) *DelegateTool {
	return &DelegateTool{runner: runner, coworkers: coworkers}
}

func (t *DelegateTool) roles() []string {
	roles := make([]string, 0, len(t.coworkers))
	for _, c := range t.coworkers {
		roles = append(roles, c.Agent.Role())
	}
	return roles
}

func (t *DelegateTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: DelegateToolName,
		Desc: fmt.Sprintf("Ask a question to one of your coworkers: %s. "+
			"They know nothing about your task, so share all the context they need.", strings.Join(t.roles(), ", ")),
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"coworker": {
				Type:     schema.String,
				Desc:     "Role of the coworker to ask",
				Enum:     t.roles(),
				Required: true,
			},
			"question": {
				Type:     schema.String,
				Desc:     "The question to ask",
				Required: true,
			},
			"context": {
				Type: schema.String,
				Desc: "Everything the coworker needs to know to answer",
			},
		}),
	}, nil
}

func (t *DelegateTool) InvokableRun(ctx context.Context, arguments string, opts ...tool.Option) (string, error) {
	var args struct {
		Coworker string `json:"coworker"`
		Question string `json:"question"`
		Context  string `json:"context"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return fmt.Sprintf("Error: invalid arguments: %v", err), nil
	}
	if strings.TrimSpace(args.Question) == "" {
		return "Error: question is required", nil
	}

	target := strings.TrimSpace(args.Coworker)
	for _, c := range t.coworkers {
		if !strings.EqualFold(c.Agent.Role(), target) && c.Agent.ID() != target {
			continue
		}
		answer, err := t.runner.RunTask(ctx, TaskRun{
			Agent:       c.Agent,
			Instruction: c.Instruction,
			Input:       buildDelegationInput(args.Question, args.Context),
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return fmt.Sprintf("Error: %s could not answer: %v", c.Agent.Role(), err), nil
		}
		return answer, nil
	}
	// Reported back to the model so it can pick a valid coworker
	return fmt.Sprintf("Error: unknown coworker %q, choose one of: %s", args.Coworker, strings.Join(t.roles(), ", ")), nil
}
