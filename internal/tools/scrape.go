package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"k8s.io/klog/v2"
)

const (
	DefaultMaxContentChars = 20000
	minContentChars        = 4
)

// ScrapeTool reads a web page and returns its main content as markdown.
// With a fixed URL the tool takes no arguments.
type ScrapeTool struct {
	name     string
	fixedURL string
	client   *http.Client
	maxChars int
}

func NewScrapeTool(name, fixedURL string, client *http.Client, maxChars int) *ScrapeTool {
	if client == nil {
		client = http.DefaultClient
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxContentChars
	}
	if maxChars < minContentChars {
		maxChars = minContentChars
	}
	klog.V(6).Infof("[ScrapeTool] created: name=%s fixedURL=%s", name, fixedURL)
	return &ScrapeTool{name: name, fixedURL: fixedURL, client: client, maxChars: maxChars}
}

func (t *ScrapeTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	if t.fixedURL != "" {
		return &schema.ToolInfo{
			Name:        t.name,
			Desc:        fmt.Sprintf("Read the content of %s. Takes no arguments.", t.fixedURL),
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		}, nil
	}
	return &schema.ToolInfo{
		Name: t.name,
		Desc: "Read the content of a website given its URL.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"website_url": {
				Type:     schema.String,
				Desc:     "Full URL of the website to read",
				Required: true,
			},
		}),
	}, nil
}

func (t *ScrapeTool) InvokableRun(ctx context.Context, arguments string, opts ...tool.Option) (string, error) {
	out, err := t.scrape(ctx, arguments)
	return observation(ctx, t.name, out, err)
}

func (t *ScrapeTool) scrape(ctx context.Context, arguments string) (string, error) {
	target := t.fixedURL
	if target == "" {
		var args struct {
			WebsiteURL string `json:"website_url"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		target = strings.TrimSpace(args.WebsiteURL)
	}

	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid website_url: %q", target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; SupportCrew/1.0)")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch %s: status %d", u, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", u, err)
	}

	content := renderMarkdown(doc, u.Scheme+"://"+u.Host)
	klog.V(6).Infof("[ScrapeTool] read %s: %d chars", u, len(content))
	return truncate(content, t.maxChars), nil
}

// renderMarkdown strips page chrome and converts the remaining body to markdown.
func renderMarkdown(doc *goquery.Document, domain string) string {
	doc.Find("script, style, noscript, iframe, svg, nav, footer, header, form").Remove()

	body := doc.Find("main").First()
	if body.Length() == 0 {
		body = doc.Find("body").First()
	}
	if body.Length() == 0 {
		body = doc.Selection
	}

	converter := md.NewConverter(domain, true, nil)
	converter.AddRules(md.Rule{
		Filter:      []string{"img"},
		Replacement: ignoreDataURLs,
	})

	content := strings.TrimSpace(converter.Convert(body))
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		content = "# " + title + "\n\n" + content
	}
	return content
}

func ignoreDataURLs(content string, selec *goquery.Selection, opt *md.Options) *string {
	if strings.HasPrefix(selec.AttrOr("src", ""), "data:") {
		empty := ""
		return &empty
	}
	return nil
}
