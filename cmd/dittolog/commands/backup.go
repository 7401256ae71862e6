package commands

import (
	"errors"
	"fmt"

	"github.com/marmos91/dittolog/internal/cli/output"
	"github.com/marmos91/dittolog/internal/cli/prompt"
	"github.com/marmos91/dittolog/internal/logger"
	"github.com/marmos91/dittolog/internal/telemetry"
	s3backup "github.com/marmos91/dittolog/pkg/backup/s3"
	"github.com/marmos91/dittolog/pkg/config"
	"github.com/spf13/cobra"
)

var (
	backupKey       string
	backupOverwrite bool
	backupOutput    string
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Sync the store and upload it to S3",
	Long: `Sync the store and upload the store file to the bucket configured in the
backup section. Credentials come from the default AWS chain (environment,
shared config, instance role).

The object key is backup.key_prefix followed by --key, or by the store
filename when --key is empty. An existing object is only replaced after
confirmation or with --overwrite.

Examples:
  dittolog backup
  dittolog backup --key nightly/dittolog.store --overwrite`,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().StringVar(&backupKey, "key", "", "Object key (default: store filename)")
	backupCmd.Flags().BoolVar(&backupOverwrite, "overwrite", false, "Replace an existing object without prompting")
	backupCmd.Flags().StringVarP(&backupOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// backupView is the printable form of an upload result.
type backupView struct {
	s3backup.Result `yaml:",inline"`
	Cursor uint64 `json:"cursor" yaml:"cursor"`
}

func (v backupView) Headers() []string {
	return []string{"Bucket", "Key", "Size", "Cursor", "ETag"}
}

func (v backupView) Rows() [][]string {
	return [][]string{{
		v.Bucket,
		v.Key,
		fmt.Sprintf("%d", v.Size),
		fmt.Sprintf("%d", v.Cursor),
		v.ETag,
	}}
}

func runBackup(cmd *cobra.Command, args []string) (err error) {
	format, err := output.ParseFormat(backupOutput)
	if err != nil {
		return err
	}

	sess, err := newSession(cmd, "backup")
	if err != nil {
		return err
	}
	defer func() { sess.close(err) }()

	if err := config.ValidateBackup(sess.cfg); err != nil {
		return err
	}

	bc := sess.cfg.Backup
	uploader, err := s3backup.NewFromConfig(sess.ctx, s3backup.Config{
		Bucket:         bc.Bucket,
		Region:         bc.Region,
		Endpoint:       bc.Endpoint,
		KeyPrefix:      bc.KeyPrefix,
		ForcePathStyle: bc.ForcePathStyle,
	})
	if err != nil {
		return err
	}

	st, err := sess.openExistingStore()
	if err != nil {
		return err
	}
	defer closeStore(st, &err)

	key := uploader.ObjectKey(backupKey, st.Path())
	ctx, span := telemetry.StartStoreSpan(sess.ctx, "backup", st.Path(),
		telemetry.Bucket(bc.Bucket),
		telemetry.Key(key))
	defer span.End()

	exists, err := uploader.Exists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		ok, err := prompt.ConfirmWithForce(fmt.Sprintf("s3://%s/%s exists. Overwrite", bc.Bucket, key), backupOverwrite)
		if err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				return fmt.Errorf("backup aborted")
			}
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Backup skipped.")
			return nil
		}
	}

	flushed, err := st.Sync()
	if err != nil {
		return fmt.Errorf("sync before backup failed: %w", err)
	}
	info, err := st.Inspect()
	if err != nil {
		return err
	}

	result, err := uploader.Upload(ctx, info, key)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("backup failed: %w", err)
	}

	logger.InfoCtx(ctx, "Backup complete",
		logger.KeyBucket, result.Bucket,
		logger.KeyKey, result.Key,
		logger.KeyBytesFlushed, flushed)

	return output.NewPrinter(cmd.OutOrStdout(), format).Print(backupView{Result: *result, Cursor: info.WriteCursor})
}
