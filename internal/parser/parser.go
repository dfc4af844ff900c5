package parser

import (
	"os"

	"SupportCrew/pkg/types"

	"gopkg.in/yaml.v3"
)

func ParseYAML(path string) (*types.CrewConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a crew definition.
func Parse(data []byte) (*types.CrewConfig, error) {
	config := types.CrewConfig{}
	err := yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	if config.Crew.Process == "" {
		config.Crew.Process = types.ProcessSequential
	}

	err = validate(&config)
	if err != nil {
		return nil, err
	}

	return &config, nil
}
