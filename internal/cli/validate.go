/*
Copyright © 2026 SupportCrew Authors
*/
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"SupportCrew/internal/crew"
	"SupportCrew/internal/crews"
	"SupportCrew/internal/parser"
	"SupportCrew/internal/tools"
	"SupportCrew/pkg/types"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [crew.yaml]",
	Short: "Validate a crew file",
	Long: `Validate checks a crew YAML file for syntax errors and structural
issues without running it: unknown agents, tools or models, tasks
assigned to agents outside the crew, and task dependency cycles.

Without a file the built-in crew is checked.

Examples:
  supportcrew validate
  supportcrew validate crews/support.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		source := crews.DefaultName
		if len(args) == 1 {
			source = args[0]
		}
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "Validating crew: %s\n", source)
		}

		var config *types.CrewConfig
		var err error
		if len(args) == 1 {
			config, err = parser.ParseYAML(args[0])
		} else {
			config, err = parser.Parse(crews.CustomerSupport)
		}
		if err == nil {
			err = validateCrew(cmd.OutOrStdout(), config)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// validateCrew assembles a parsed crew definition and prints a summary.
func validateCrew(w io.Writer, config *types.CrewConfig) error {
	toolset, err := tools.Build(config.Tools, tools.Config{})
	if err != nil {
		return err
	}
	group, err := crew.Build(config, toolset)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "✓ Crew is valid\n")
	fmt.Fprintf(w, "  Agents: %d\n", len(group.Agents()))
	fmt.Fprintf(w, "  Process: %s\n", config.Crew.Process)
	fmt.Fprintf(w, "  Tasks: %s\n", taskOrder(group))
	if placeholders := group.Placeholders(); len(placeholders) > 0 {
		fmt.Fprintf(w, "  Inputs: %s\n", strings.Join(placeholders, ", "))
	}
	if missing := crew.MissingInputs(config.Inputs, group.Templates()...); len(missing) > 0 {
		fmt.Fprintf(w, "  Inputs without a default: %s\n", strings.Join(missing, ", "))
	}
	return nil
}

func taskOrder(group *crew.Group) string {
	ids := make([]string, 0, len(group.Order()))
	for _, t := range group.Order() {
		ids = append(ids, t.ID())
	}
	return strings.Join(ids, " -> ")
}
