/*
Copyright © 2026 SupportCrew Authors
*/
package cli

import (
	"flag"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var (
	verbose  bool
	envFiles []string
)

var rootCmd = &cobra.Command{
	Use:   "supportcrew",
	Short: "Run the customer support crew",
	Long: `SupportCrew runs a two-agent customer support workflow: a support
representative drafts a reply to a customer inquiry and a quality
assurance specialist reviews and finalizes it.

Without a subcommand the built-in crew runs with its built-in inputs.

Credentials are read from OPENAI_API_KEY and SERPER_API_KEY, from .env,
or from ~/.supportcrew/config.yaml and ./.supportcrew.yaml.`,
	Args: cobra.NoArgs,
	Run:  runCrew,
}

// Execute runs the root command.
func Execute() {
	defer klog.Flush()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	goFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(goFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(goFlags)

	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "print what the CLI is doing")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to read credentials from")
	addRunFlags(rootCmd)
}
