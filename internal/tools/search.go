package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/tidwall/gjson"
	"k8s.io/klog/v2"
)

const (
	DefaultSerperEndpoint = "https://google.serper.dev/search"
	defaultSearchResults  = 10
)

// SearchTool queries Google through the Serper API.
// Implements Eino's tool.InvokableTool.
type SearchTool struct {
	name     string
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewSearchTool(name, apiKey, endpoint string, client *http.Client) *SearchTool {
	if endpoint == "" {
		endpoint = DefaultSerperEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	klog.V(6).Infof("[SearchTool] created: name=%s endpoint=%s", name, endpoint)
	return &SearchTool{name: name, apiKey: apiKey, endpoint: endpoint, client: client}
}

func (t *SearchTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: t.name,
		Desc: "Search the internet with a query and return the top results with title, link and snippet.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"search_query": {
				Type:     schema.String,
				Desc:     "Query to search the internet for",
				Required: true,
			},
		}),
	}, nil
}

func (t *SearchTool) InvokableRun(ctx context.Context, arguments string, opts ...tool.Option) (string, error) {
	out, err := t.search(ctx, arguments)
	return observation(ctx, t.name, out, err)
}

func (t *SearchTool) search(ctx context.Context, arguments string) (string, error) {
	var args struct {
		SearchQuery string `json:"search_query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(args.SearchQuery) == "" {
		return "", fmt.Errorf("search_query is required")
	}

	body, _ := json.Marshal(map[string]any{"q": args.SearchQuery, "num": defaultSearchResults})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("X-API-KEY", t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("serper request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("serper returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	klog.V(6).Infof("[SearchTool] query=%q bytes=%d", args.SearchQuery, len(raw))
	return formatSearchResults(raw), nil
}

// formatSearchResults renders a Serper response as plain text for the model.
func formatSearchResults(raw []byte) string {
	result := gjson.ParseBytes(raw)
	var sb strings.Builder

	if answer := result.Get("answerBox"); answer.Exists() {
		text := answer.Get("answer").String()
		if text == "" {
			text = answer.Get("snippet").String()
		}
		if text != "" {
			fmt.Fprintf(&sb, "Answer: %s\n\n", text)
		}
	}

	result.Get("organic").ForEach(func(_, item gjson.Result) bool {
		link := item.Get("link").String()
		if link == "" {
			return true
		}
		fmt.Fprintf(&sb, "Title: %s\nLink: %s\nSnippet: %s\n---\n",
			item.Get("title").String(), link, item.Get("snippet").String())
		return true
	})

	if sb.Len() == 0 {
		return "No results found."
	}
	return strings.TrimSpace(sb.String())
}
