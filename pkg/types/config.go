package types

type CrewConfig struct {
	Name   string            `yaml:"name"`
	Agents []Agent           `yaml:"agents"`
	Tools  []ToolSpec        `yaml:"tools,omitempty"`
	Tasks  []Task            `yaml:"tasks"`
	Models map[string]Model  `yaml:"models,omitempty"`
	Crew   CrewSpec          `yaml:"crew"`
	Inputs map[string]string `yaml:"inputs,omitempty"`
}

// MemberIDs returns the agent IDs that belong to the crew.
func (c *CrewConfig) MemberIDs() []string {
	if len(c.Crew.Agents) > 0 {
		return c.Crew.Agents
	}
	ids := make([]string, 0, len(c.Agents))
	for _, a := range c.Agents {
		ids = append(ids, a.ID)
	}
	return ids
}
