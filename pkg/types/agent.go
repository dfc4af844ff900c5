package types

type Agent struct {
	ID              string `yaml:"id"`
	Model           string `yaml:"model,omitempty"`
	Role            string `yaml:"role"`
	Goal            string `yaml:"goal"`
	Backstory       string `yaml:"backstory"`
	AllowDelegation bool   `yaml:"allow_delegation,omitempty"`
	Verbose         bool   `yaml:"verbose,omitempty"`
	MaxIterations   int    `yaml:"max_iterations,omitempty"` // default 10
}

// Templates returns every template-bearing field of the agent.
func (a *Agent) Templates() []string {
	return []string{a.Role, a.Goal, a.Backstory}
}
