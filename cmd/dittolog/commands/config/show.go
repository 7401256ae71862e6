package config

import (
	"github.com/marmos91/dittolog/internal/cli/output"
	"github.com/marmos91/dittolog/pkg/config"
	"github.com/spf13/cobra"
)

var showOutput string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Display the effective dittolog configuration: the config file merged with
DITTOLOG_* environment overrides and defaults.

By default outputs YAML format. Use --output to change format.

Examples:
  # Show default config as YAML
  dittolog config show

  # Show as JSON
  dittolog config show --output json

  # Show the effect of an override
  DITTOLOG_STORE_CAPACITY=1Gi dittolog config show`,
	RunE: runConfigShow,
}

func init() {
	showCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(cmd.OutOrStdout(), cfg)
	default:
		return output.PrintYAML(cmd.OutOrStdout(), cfg)
	}
}
