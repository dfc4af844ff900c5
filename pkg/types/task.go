package types

type Task struct {
	ID             string   `yaml:"id"`
	Description    string   `yaml:"description"`
	ExpectedOutput string   `yaml:"expected_output"`
	Tools          []string `yaml:"tools,omitempty"`   // Tool IDs, in binding order
	Agent          string   `yaml:"agent"`             // Agent ID
	Context        []string `yaml:"context,omitempty"` // Task IDs whose output this task consumes
}

func (t *Task) Templates() []string {
	return []string{t.Description, t.ExpectedOutput}
}
