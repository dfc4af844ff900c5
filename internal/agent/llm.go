package agent

import (
	"context"
	"fmt"
	"time"

	"SupportCrew/pkg/types"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"k8s.io/klog/v2"
)

const defaultRequestTimeout = 3 * time.Minute

// NewChatModel creates the Eino chat model for a model definition.
// Credentials come from the definition only.
func NewChatModel(ctx context.Context, m types.Model) (model.ToolCallingChatModel, error) {
	switch m.Provider {
	case "openai", "":
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", m.Provider)
	}

	config := &openai.ChatModelConfig{
		APIKey:  m.APIKey,
		Model:   m.Model,
		Timeout: defaultRequestTimeout,
	}
	if m.Endpoint != "" {
		config.BaseURL = m.Endpoint
	}
	if m.MaxTokens > 0 {
		maxTokens := m.MaxTokens
		config.MaxTokens = &maxTokens
	}

	klog.V(6).Infof("[NewChatModel] model=%s endpoint=%s", m.Model, m.Endpoint)
	chatModel, err := openai.NewChatModel(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create chat model %s: %w", m.Model, err)
	}
	return chatModel, nil
}

// NewChatModels builds one chat model per named definition.
func NewChatModels(ctx context.Context, models map[string]types.Model) (map[string]model.ToolCallingChatModel, error) {
	out := make(map[string]model.ToolCallingChatModel, len(models))
	for name, m := range models {
		cm, err := NewChatModel(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", name, err)
		}
		out[name] = cm
	}
	return out, nil
}
