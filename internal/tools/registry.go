package tools

import (
	"context"
	"fmt"
	"net/http"

	"SupportCrew/pkg/types"

	"github.com/cloudwego/eino/components/tool"
	"k8s.io/klog/v2"
)

// Config carries the credentials and transport the tools need.
type Config struct {
	SerperAPIKey    string
	SerperEndpoint  string
	HTTPClient      *http.Client
	MaxContentChars int
}

// Build creates one Eino tool per spec, keyed by spec ID. The spec ID is
// also the tool name the model sees.
func Build(specs []types.ToolSpec, cfg Config) (map[string]tool.BaseTool, error) {
	built := make(map[string]tool.BaseTool, len(specs))
	for _, spec := range specs {
		switch spec.Type {
		case types.ToolSerperSearch:
			built[spec.ID] = NewSearchTool(spec.ID, cfg.SerperAPIKey, cfg.SerperEndpoint, cfg.HTTPClient)
		case types.ToolScrapeWebsite:
			built[spec.ID] = NewScrapeTool(spec.ID, spec.WebsiteURL, cfg.HTTPClient, cfg.MaxContentChars)
		default:
			return nil, fmt.Errorf("unknown tool type %q for %s", spec.Type, spec.ID)
		}
	}
	klog.V(6).Infof("[tools.Build] created %d tools", len(built))
	return built, nil
}

// observation turns a failed call into text the model can act on.
// Only cancellation of the run is returned as an error.
func observation(ctx context.Context, name, out string, err error) (string, error) {
	if err == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	klog.V(4).Infof("[%s] call failed: %v", name, err)
	return "Error: " + err.Error(), nil
}

// truncate shortens s to at most maxLen runes, ending in "..." when cut.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
