package commands

import (
	"fmt"

	"github.com/marmos91/dittolog/internal/cli/output"
	"github.com/spf13/cobra"
)

var createOutput string

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the configured store",
	Long: `Create the store file described by the store section of the configuration.

A fresh file is sized to store.capacity and given a header. When the file
already holds a store its header is validated and its capacity must match;
with store.exclusive set an existing file is an error instead.

Examples:
  dittolog create
  DITTOLOG_STORE_CAPACITY=1Gi dittolog create`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

func runCreate(cmd *cobra.Command, args []string) (err error) {
	format, err := output.ParseFormat(createOutput)
	if err != nil {
		return err
	}

	sess, err := newSession(cmd, "create")
	if err != nil {
		return err
	}
	defer func() { sess.close(err) }()

	st, err := sess.createStore()
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer closeStore(st, &err)

	info, err := st.Inspect()
	if err != nil {
		return err
	}
	return output.NewPrinter(cmd.OutOrStdout(), format).Print(newInfoView(info))
}
