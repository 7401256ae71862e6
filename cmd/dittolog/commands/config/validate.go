package config

import (
	"fmt"

	"github.com/marmos91/dittolog/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the dittolog configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  dittolog config validate

  # Validate specific config file
  dittolog config validate --config ./dittolog.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if cfg.Backup.Bucket == "" {
		warnings = append(warnings, "backup.bucket not configured - 'dittolog backup' will fail")
	}
	if !cfg.Store.SyncOnClose {
		warnings = append(warnings, "store.sync_on_close disabled - unsynced appends are lost on crash")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Store path:      %s\n", cfg.Store.Path())
	_, _ = fmt.Fprintf(out, "  Store capacity:  %s\n", cfg.Store.Capacity.Human())
	_, _ = fmt.Fprintf(out, "  Store flags:     %s\n", cfg.Store.StoreFlags())
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)

	return nil
}
