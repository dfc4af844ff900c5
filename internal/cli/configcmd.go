/*
Copyright © 2026 SupportCrew Authors
*/
package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"SupportCrew/internal/config"

	"github.com/spf13/cobra"
)

var localConfig bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the CLI configuration",
	Long: `Config manages ~/.supportcrew/config.yaml (or ./.supportcrew.yaml
with --local). Environment variables and .env files take precedence over
these values.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set stores a configuration value.

Keys: ` + strings.Join(configKeys(), ", ") + `

Examples:
  supportcrew config set api_key sk-...
  supportcrew config set model gpt-4o --local`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		path := config.GlobalConfigPath()
		if localConfig {
			path = config.LocalConfigPath()
		}
		if err := setConfigValue(path, args[0], args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s saved to %s\n", args[0], path)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadEffectiveConfig(config.GlobalConfigPath(), config.LocalConfigPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		showConfig(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	configSetCmd.Flags().BoolVar(&localConfig, "local", false, "write ./.supportcrew.yaml instead of the global file")
	configCmd.AddCommand(configSetCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configFields = map[string]func(*config.FileConfig) *string{
	"api_key":        func(c *config.FileConfig) *string { return &c.APIKey },
	"base_url":       func(c *config.FileConfig) *string { return &c.BaseURL },
	"model":          func(c *config.FileConfig) *string { return &c.Model },
	"serper_api_key": func(c *config.FileConfig) *string { return &c.SerperAPIKey },
	"embedder":       func(c *config.FileConfig) *string { return &c.Embedder },
}

func configKeys() []string {
	keys := make([]string, 0, len(configFields))
	for k := range configFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isSecret(key string) bool {
	return strings.HasSuffix(key, "api_key")
}

// setConfigValue updates one key of the config file at path, keeping the rest.
func setConfigValue(path, key, value string) error {
	field, ok := configFields[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(configKeys(), ", "))
	}
	cfg, err := config.LoadConfigFile(path)
	if err != nil {
		return err
	}
	*field(&cfg) = strings.TrimSpace(value)
	return config.SaveConfigFile(path, cfg)
}

func showConfig(w io.Writer, cfg config.FileConfig) {
	for _, key := range configKeys() {
		value := *configFields[key](&cfg)
		switch {
		case isSecret(key):
			value = config.Mask(value)
		case value == "":
			value = "(not set)"
		}
		fmt.Fprintf(w, "%s: %s\n", key, value)
	}
}
