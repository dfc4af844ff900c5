// Package agenttest provides a scripted chat model for tests that exercise
// agent runs without a network.
package agenttest

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// RespondFunc produces the next model message for the given conversation.
type RespondFunc func(input []*schema.Message) (*schema.Message, error)

// Model is a model.ToolCallingChatModel driven by a RespondFunc.
type Model struct {
	respond RespondFunc

	mu    sync.Mutex
	calls [][]*schema.Message
	tools []*schema.ToolInfo
}

func NewModel(respond RespondFunc) *Model {
	return &Model{respond: respond}
}

// Fixed always answers with content.
func Fixed(content string) *Model {
	return NewModel(func([]*schema.Message) (*schema.Message, error) {
		return Reply(content), nil
	})
}

// Reply is an assistant message with token usage attached.
func Reply(content string) *schema.Message {
	msg := schema.AssistantMessage(content, nil)
	msg.ResponseMeta = &schema.ResponseMeta{
		FinishReason: "stop",
		Usage:        &schema.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
	return msg
}

// ToolCall is an assistant message requesting a single tool call.
func ToolCall(id, name, arguments string) *schema.Message {
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID:       id,
		Type:     "function",
		Function: schema.FunctionCall{Name: name, Arguments: arguments},
	}})
}

func (m *Model) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.calls = append(m.calls, append([]*schema.Message(nil), input...))
	m.mu.Unlock()

	msg, err := m.respond(input)
	if err != nil {
		return nil, err
	}
	out := *msg
	return &out, nil
}

func (m *Model) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *Model) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tools = append([]*schema.ToolInfo(nil), tools...)
	return m, nil
}

// Calls returns the conversations the model has been asked to continue.
func (m *Model) Calls() [][]*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]*schema.Message(nil), m.calls...)
}

// Tools returns the tools last bound to the model.
func (m *Model) Tools() []*schema.ToolInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*schema.ToolInfo(nil), m.tools...)
}

// System returns the system prompt of a conversation.
func System(input []*schema.Message) string {
	for _, msg := range input {
		if msg.Role == schema.System {
			return msg.Content
		}
	}
	return ""
}

// LastUser returns the most recent user message of a conversation.
func LastUser(input []*schema.Message) string {
	for i := len(input) - 1; i >= 0; i-- {
		if input[i].Role == schema.User {
			return input[i].Content
		}
	}
	return ""
}

// ToolResult returns the most recent tool message content, if any.
func ToolResult(input []*schema.Message) (string, bool) {
	for i := len(input) - 1; i >= 0; i-- {
		if input[i].Role == schema.Tool {
			return input[i].Content, true
		}
		if input[i].Role == schema.User {
			break
		}
	}
	return "", false
}
