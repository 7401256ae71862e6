// Package commands implements the dittolog CLI.
package commands

import (
	"context"
	"fmt"
	"os"

	configcmd "github.com/marmos91/dittolog/cmd/dittolog/commands/config"
	"github.com/spf13/cobra"

	// Registers the Prometheus store metrics constructor.
	_ "github.com/marmos91/dittolog/pkg/metrics/prometheus"
)

// Build information, set by main.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dittolog",
	Short: "Append-only record store on a memory-mapped file",
	Long: `dittolog manages a fixed-capacity, append-only record store backed by a
memory-mapped file.

Each record is an 8-byte little-endian length followed by its payload. The
store is created at its full size and never grows; appends fail once the
remaining space cannot hold a record.

Use "dittolog init" to create a configuration file, then "dittolog create"
to create the store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/dittolog/config.yaml)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(appendCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(configcmd.Cmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// GetRootCmd returns the root command, for documentation generators and tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetConfigFile returns the --config flag value.
func GetConfigFile() string {
	return cfgFile
}

// PrintErr writes a formatted message to stderr.
func PrintErr(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
