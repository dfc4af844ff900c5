/*
Copyright © 2026 SupportCrew Authors
*/
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"SupportCrew/internal/config"

	"github.com/spf13/cobra"
)

const defaultTaskTimeout = 5 * time.Minute

var (
	inputFlags  map[string]string
	customer    string
	person      string
	inquiry     string
	taskTimeout time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run [crew.yaml]",
	Short: "Run a crew",
	Long: `Run executes a crew defined in a YAML file, or the built-in customer
support crew when no file is given.

Inputs declared by the crew can be overridden with --input, or with the
--customer, --person and --inquiry shortcuts.

Examples:
  supportcrew run
  supportcrew run --customer "Acme Co" --person "Jane Doe" --inquiry "What is your refund policy?"
  supportcrew run crews/support.yaml --input product=widgets --task-timeout 2m`,
	Args: cobra.MaximumNArgs(1),
	Run:  runCrew,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// addRunFlags registers the run inputs as persistent flags so the bare
// command and "run" share them.
func addRunFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringToStringVar(&inputFlags, "input", nil, "run input as key=value (repeatable)")
	flags.StringVar(&customer, "customer", "", "customer input")
	flags.StringVar(&person, "person", "", "person input")
	flags.StringVar(&inquiry, "inquiry", "", "inquiry input")
	flags.DurationVar(&taskTimeout, "task-timeout", defaultTaskTimeout, "time limit for each task")
}

// collectInputs merges --input with the named shortcuts; shortcuts win.
func collectInputs() map[string]string {
	inputs := make(map[string]string, len(inputFlags)+3)
	for k, v := range inputFlags {
		inputs[k] = v
	}
	for key, value := range map[string]string{"customer": customer, "person": person, "inquiry": inquiry} {
		if value != "" {
			inputs[key] = value
		}
	}
	return inputs
}

func runCrew(cmd *cobra.Command, args []string) {
	opts := KickoffOptions{
		Inputs:      collectInputs(),
		TaskTimeout: taskTimeout,
	}

	if len(args) == 1 {
		opts.Path = args[0]
	}
	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Running crew: %s\n", sourceName(opts.Path))
	}

	settings, err := config.NewLoader(envFiles...).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	opts.Settings = settings

	result := Kickoff(context.Background(), cmd.OutOrStdout(), opts)
	if !result.Succeeded() {
		os.Exit(1)
	}
}
