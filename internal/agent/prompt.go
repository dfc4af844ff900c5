package agent

import (
	"fmt"
	"strings"
)

// BuildInstruction turns an agent persona into its system prompt.
func BuildInstruction(role, goal, backstory string) string {
	return fmt.Sprintf("You are %s. %s\nYour personal goal is: %s", role, backstory, goal)
}

// TaskPrompt is the rendered input of one task.
type TaskPrompt struct {
	Description    string
	ExpectedOutput string
	Context        string // Outputs of the tasks this one depends on
	Memory         string // Relevant long-term memories
}

// String renders the user message sent to the agent.
func (p TaskPrompt) String() string {
	var sb strings.Builder
	sb.WriteString("Current Task: ")
	sb.WriteString(p.Description)

	if p.ExpectedOutput != "" {
		sb.WriteString("\n\nThis is the expected criteria for your final answer: ")
		sb.WriteString(p.ExpectedOutput)
		sb.WriteString("\nYou MUST return the actual complete content as the final answer, not a summary.")
	}

	if p.Context != "" {
		sb.WriteString("\n\nThis is the context you're working with:\n")
		sb.WriteString(p.Context)
	}

	if p.Memory != "" {
		sb.WriteString("\n\n## Relevant memories from this run:\n")
		sb.WriteString(p.Memory)
	}

	sb.WriteString("\n\nBegin! This is VERY important to you, use the tools available and give your best Final Answer, your job depends on it!")
	return sb.String()
}

func buildDelegationInput(question, context string) string {
	prompt := TaskPrompt{
		Description:    question,
		ExpectedOutput: "Your best answer to your coworker asking you this, accounting for the context shared.",
		Context:        context,
	}
	return prompt.String()
}
