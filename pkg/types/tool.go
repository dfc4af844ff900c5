package types

const (
	ToolSerperSearch  = "serper_search"
	ToolScrapeWebsite = "scrape_website"
)

type ToolSpec struct {
	ID         string `yaml:"id"`
	Type       string `yaml:"type"`                  // "serper_search" or "scrape_website"
	WebsiteURL string `yaml:"website_url,omitempty"` // Pre-bound target for scrape_website
}
