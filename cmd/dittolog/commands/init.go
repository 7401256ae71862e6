package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/marmos91/dittolog/internal/cli/prompt"
	"github.com/marmos91/dittolog/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample dittolog configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/dittolog/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  dittolog init

  # Initialize with custom path
  dittolog init --config ./dittolog.yaml

  # Overwrite an existing config without asking
  dittolog init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file without prompting")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := GetConfigFile()
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil {
		ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Config file %s exists. Overwrite", configPath), initForce)
		if err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				return fmt.Errorf("init aborted")
			}
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Keeping existing configuration.")
			return nil
		}
	}

	if err := config.SaveConfig(config.GetDefaultConfig(), configPath); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", configPath)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Edit store.directory and store.capacity to suit your setup")
	_, _ = fmt.Fprintln(out, "  2. Create the store with: dittolog create")
	_, _ = fmt.Fprintf(out, "  3. Or point at this file explicitly: dittolog create --config %s\n", configPath)
	return nil
}
