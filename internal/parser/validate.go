package parser

import (
	"fmt"

	"SupportCrew/pkg/types"
)

func validate(config *types.CrewConfig) error {
	if len(config.Agents) == 0 {
		return fmt.Errorf("no agents defined")
	}
	if len(config.Tasks) == 0 {
		return fmt.Errorf("no tasks defined")
	}
	if config.Crew.Process != types.ProcessSequential {
		return fmt.Errorf("invalid crew process: %s", config.Crew.Process)
	}

	agentIDs := make(map[string]bool)
	for _, agent := range config.Agents {
		if agent.ID == "" {
			return fmt.Errorf("agent missing id")
		}
		if agentIDs[agent.ID] {
			return fmt.Errorf("duplicate agent id: %s", agent.ID)
		}
		if agent.Model != "" {
			if _, ok := config.Models[agent.Model]; !ok {
				return fmt.Errorf("agent %s uses unknown model: %s", agent.ID, agent.Model)
			}
		}
		agentIDs[agent.ID] = true
	}

	for _, member := range config.Crew.Agents {
		if !agentIDs[member] {
			return fmt.Errorf("unknown agent in crew: %s", member)
		}
	}

	toolIDs, err := validateTools(config.Tools)
	if err != nil {
		return err
	}

	taskIDs := make(map[string]bool)
	for _, task := range config.Tasks {
		if task.ID == "" {
			return fmt.Errorf("task missing id")
		}
		if taskIDs[task.ID] {
			return fmt.Errorf("duplicate task id: %s", task.ID)
		}
		if !agentIDs[task.Agent] {
			return fmt.Errorf("unknown agent in task %s: %s", task.ID, task.Agent)
		}
		for _, t := range task.Tools {
			if !toolIDs[t] {
				return fmt.Errorf("unknown tool in task %s: %s", task.ID, t)
			}
		}
		taskIDs[task.ID] = true
	}

	for _, task := range config.Tasks {
		for _, dep := range task.Context {
			if !taskIDs[dep] {
				return fmt.Errorf("unknown task in context of %s: %s", task.ID, dep)
			}
		}
	}
	return nil
}

func validateTools(tools []types.ToolSpec) (map[string]bool, error) {
	ids := make(map[string]bool)
	for _, t := range tools {
		if t.ID == "" {
			return nil, fmt.Errorf("tool missing id")
		}
		if ids[t.ID] {
			return nil, fmt.Errorf("duplicate tool id: %s", t.ID)
		}
		switch t.Type {
		case types.ToolSerperSearch:
			if t.WebsiteURL != "" {
				return nil, fmt.Errorf("tool %s: website_url is only valid for %s", t.ID, types.ToolScrapeWebsite)
			}
		case types.ToolScrapeWebsite:
		default:
			return nil, fmt.Errorf("invalid tool type for %s: %s", t.ID, t.Type)
		}
		ids[t.ID] = true
	}
	return ids, nil
}
