package types

const ProcessSequential = "sequential"

// MemoryConfig configures the long-term memory backend used when the crew has memory enabled
type MemoryConfig struct {
	PersistPath string `yaml:"persist_path,omitempty"` // Empty keeps the store in process memory
	Embedder    string `yaml:"embedder,omitempty"`     // "openai" (default) or "ollama"
	TopK        int    `yaml:"top_k,omitempty"`        // Relevant documents injected per task (default: 3)
}

type CrewSpec struct {
	Agents  []string     `yaml:"agents,omitempty"`  // Member agent IDs; empty means every defined agent
	Process string       `yaml:"process,omitempty"` // Only "sequential"
	Memory  bool         `yaml:"memory,omitempty"`
	Verbose bool         `yaml:"verbose,omitempty"`
	Storage MemoryConfig `yaml:"storage,omitempty"`
}
