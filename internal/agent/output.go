package agent

import (
	"regexp"
	"strings"
)

var (
	// Reasoning models served through OpenAI-compatible endpoints may inline their thinking
	thinkPattern       = regexp.MustCompile(`(?s)<think>.*?</think>`)
	finalAnswerPattern = regexp.MustCompile(`(?im)^[ \t]*final answer[ \t]*:[ \t]*`)
)

// CleanOutput strips inline reasoning and a "Final Answer:" marker that
// starts a line, along with any lines before it.
func CleanOutput(response string) string {
	result := thinkPattern.ReplaceAllString(response, "")
	result = strings.TrimSpace(result)
	if loc := finalAnswerPattern.FindStringIndex(result); loc != nil && strings.TrimSpace(result[loc[1]:]) != "" {
		result = result[loc[1]:]
	}
	return strings.TrimSpace(result)
}

// truncate shortens s to maxLen runes on one line, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(runes) <= maxLen {
		return string(runes)
	}
	if maxLen < 4 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
