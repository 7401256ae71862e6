package commands

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/marmos91/dittolog/internal/cli/output"
	"github.com/marmos91/dittolog/internal/logger"
	"github.com/marmos91/dittolog/internal/telemetry"
	"github.com/spf13/cobra"
)

// maxStdinRecord bounds a single line read with --stdin.
const maxStdinRecord = 16 << 20

var (
	appendStdin  bool
	appendSync   bool
	appendOutput string
)

var appendCmd = &cobra.Command{
	Use:   "append [records...]",
	Short: "Append records to the store",
	Long: `Append each argument as one record, or each line of standard input with
--stdin. Empty lines are skipped since records cannot be empty.

The offset printed for a record is where its 8-byte length field starts.
Appends are not durable until synced; pass --sync to flush before exit.

Examples:
  dittolog append hello world
  printf 'a\nb\n' | dittolog append --stdin --sync`,
	RunE: runAppend,
}

func init() {
	appendCmd.Flags().BoolVar(&appendStdin, "stdin", false, "Read one record per line from standard input")
	appendCmd.Flags().BoolVar(&appendSync, "sync", false, "Sync the store after appending")
	appendCmd.Flags().StringVarP(&appendOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// appendedRecord is one row of append output.
type appendedRecord struct {
	Offset uint64 `json:"offset" yaml:"offset"`
	Size   int    `json:"size" yaml:"size"`
}

type appendResult struct {
	Records []appendedRecord `json:"records" yaml:"records"`
	Cursor  uint64           `json:"cursor" yaml:"cursor"`
	Synced  uint64           `json:"synced_bytes" yaml:"synced_bytes"`
}

func (r appendResult) Headers() []string {
	return []string{"Offset", "Size"}
}

func (r appendResult) Rows() [][]string {
	rows := make([][]string, 0, len(r.Records))
	for _, rec := range r.Records {
		rows = append(rows, []string{strconv.FormatUint(rec.Offset, 10), strconv.Itoa(rec.Size)})
	}
	return rows
}

func runAppend(cmd *cobra.Command, args []string) (err error) {
	format, err := output.ParseFormat(appendOutput)
	if err != nil {
		return err
	}
	if appendStdin && len(args) > 0 {
		return fmt.Errorf("records cannot be given both as arguments and with --stdin")
	}
	if !appendStdin && len(args) == 0 {
		return fmt.Errorf("no records given (pass arguments or --stdin)")
	}

	sess, err := newSession(cmd, "append")
	if err != nil {
		return err
	}
	defer func() { sess.close(err) }()

	st, err := sess.openExistingStore()
	if err != nil {
		return err
	}
	defer closeStore(st, &err)

	ctx, span := telemetry.StartStoreSpan(sess.ctx, "append", st.Path())
	defer span.End()

	var result appendResult
	write := func(payload []byte) error {
		offset, err := st.Write(payload)
		if err != nil {
			return err
		}
		result.Records = append(result.Records, appendedRecord{Offset: offset, Size: len(payload)})
		return nil
	}

	if appendStdin {
		err = appendLines(cmd.InOrStdin(), write)
	} else {
		for _, arg := range args {
			if err = write([]byte(arg)); err != nil {
				break
			}
		}
	}
	if err != nil {
		telemetry.RecordError(ctx, err)
		return fmt.Errorf("append failed after %d records: %w", len(result.Records), err)
	}

	if appendSync {
		if result.Synced, err = st.Sync(); err != nil {
			return err
		}
	}
	if result.Cursor, err = st.Cursor(); err != nil {
		return err
	}

	telemetry.SetAttributes(ctx,
		telemetry.Records(len(result.Records)),
		telemetry.Cursor(result.Cursor),
		telemetry.BytesFlushed(result.Synced))
	logger.InfoCtx(ctx, "Records appended",
		logger.KeyRecords, len(result.Records),
		logger.KeyCursor, result.Cursor,
		logger.KeyBytesFlushed, result.Synced)

	return output.NewPrinter(cmd.OutOrStdout(), format).Print(result)
}

// appendLines calls write for every non-empty line of r.
func appendLines(r io.Reader, write func([]byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStdinRecord)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := write(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	return nil
}
