package commands

import (
	"fmt"

	"github.com/marmos91/dittolog/internal/logger"
	"github.com/marmos91/dittolog/internal/telemetry"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Flush the store to stable storage",
	Long: `Open the store and flush every record after the header.

Reopening resets the sync cursor to the end of the header, so this forces
all recovered records to disk, e.g. after a crash or before a backup.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) (err error) {
	sess, err := newSession(cmd, "sync")
	if err != nil {
		return err
	}
	defer func() { sess.close(err) }()

	st, err := sess.openExistingStore()
	if err != nil {
		return err
	}
	defer closeStore(st, &err)

	ctx, span := telemetry.StartStoreSpan(sess.ctx, "sync", st.Path())
	defer span.End()

	flushed, err := st.Sync()
	if err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("sync failed: %w", err)
	}
	telemetry.SetAttributes(ctx, telemetry.BytesFlushed(flushed))
	logger.InfoCtx(ctx, "Store synced", logger.KeyBytesFlushed, flushed)

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Synced %d bytes to %s\n", flushed, st.Path())
	return nil
}
