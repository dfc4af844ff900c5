package memory

import (
	"fmt"
	"strings"
	"sync"
)

// TaskOutput is the result one agent produced for one task.
type TaskOutput struct {
	TaskID    string // Task that produced the output
	AgentRole string // Role of the agent that ran the task
	Content   string // Raw final answer
}

// ShortTermMemory keeps the outputs of the current run so later tasks can
// consume their declared predecessors. Safe for concurrent use.
type ShortTermMemory struct {
	mu      sync.RWMutex
	outputs []TaskOutput   // Append-only, in completion order
	byTask  map[string]int // Task ID -> index into outputs
}

func NewShortTermMemory() *ShortTermMemory {
	return &ShortTermMemory{
		outputs: make([]TaskOutput, 0),
		byTask:  make(map[string]int),
	}
}

// Record stores a task's output. Each task may record once.
func (m *ShortTermMemory) Record(taskID, agentRole, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byTask[taskID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateOutput, taskID)
	}

	m.byTask[taskID] = len(m.outputs)
	m.outputs = append(m.outputs, TaskOutput{
		TaskID:    taskID,
		AgentRole: agentRole,
		Content:   content,
	})
	return nil
}

// GetContext renders the outputs of the given tasks, in the order requested,
// as a context block for a downstream task.
func (m *ShortTermMemory) GetContext(taskIDs []string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sb strings.Builder
	for _, id := range taskIDs {
		idx, ok := m.byTask[id]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownTask, id)
		}
		out := m.outputs[idx]
		fmt.Fprintf(&sb, "[%s - %s]:\n%s\n\n", out.TaskID, out.AgentRole, out.Content)
	}
	return strings.TrimSpace(sb.String()), nil
}

// GetLastOutput returns the most recently recorded output, or "" when nothing ran.
func (m *ShortTermMemory) GetLastOutput() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.outputs) == 0 {
		return ""
	}
	return m.outputs[len(m.outputs)-1].Content
}

// Count returns the number of recorded outputs.
func (m *ShortTermMemory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.outputs)
}
