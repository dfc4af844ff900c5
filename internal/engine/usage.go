package engine

import (
	"sort"
	"sync"
)

// TokenUsage is the token consumption of one agent or of the whole run.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
	Calls        int `json:"calls"`
}

func (u *TokenUsage) add(input, output int) {
	u.InputTokens += input
	u.OutputTokens += output
	u.TotalTokens += input + output
	u.Calls++
}

// UsageTracker accumulates model token usage per agent.
// Safe for concurrent use; tools may run agents on their own goroutines.
type UsageTracker struct {
	mu     sync.RWMutex
	total  TokenUsage
	agents map[string]*TokenUsage
}

func NewUsageTracker() *UsageTracker {
	return &UsageTracker{agents: make(map[string]*TokenUsage)}
}

// RecordUsage records one model response for an agent.
func (t *UsageTracker) RecordUsage(agentID string, inputTokens, outputTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.agents[agentID] == nil {
		t.agents[agentID] = &TokenUsage{}
	}
	t.agents[agentID].add(inputTokens, outputTokens)
	t.total.add(inputTokens, outputTokens)
}

func (t *UsageTracker) Total() TokenUsage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total
}

// Agent returns the usage of one agent, zero if it never called the model.
func (t *UsageTracker) Agent(agentID string) TokenUsage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if u, ok := t.agents[agentID]; ok {
		return *u
	}
	return TokenUsage{}
}

// Snapshot returns a copy of the per-agent usage.
func (t *UsageTracker) Snapshot() Usage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	agents := make(map[string]TokenUsage, len(t.agents))
	for id, u := range t.agents {
		agents[id] = *u
	}
	return Usage{Total: t.total, Agents: agents}
}

// Usage is the token usage of a finished run.
type Usage struct {
	Total  TokenUsage            `json:"total"`
	Agents map[string]TokenUsage `json:"agents"`
}

// AgentIDs returns the agents with recorded usage, sorted.
func (u Usage) AgentIDs() []string {
	ids := make([]string, 0, len(u.Agents))
	for id := range u.Agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
