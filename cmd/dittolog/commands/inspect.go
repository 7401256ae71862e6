package commands

import (
	"fmt"

	"github.com/marmos91/dittolog/internal/bytesize"
	"github.com/marmos91/dittolog/internal/cli/output"
	"github.com/marmos91/dittolog/pkg/store"
	"github.com/spf13/cobra"
)

var inspectOutput string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the store header, cursors and space usage",
	Long: `Show the raw header fields, the recovered write cursor and how much of
the store is in use.

The sync cursor of a freshly opened store is the end of the header: bytes
recovered on open are flushed again by the next sync.

Examples:
  dittolog inspect
  dittolog inspect -o json`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

func runInspect(cmd *cobra.Command, args []string) (err error) {
	format, err := output.ParseFormat(inspectOutput)
	if err != nil {
		return err
	}

	sess, err := newSession(cmd, "inspect")
	if err != nil {
		return err
	}
	defer func() { sess.close(err) }()

	st, err := sess.openExistingStore()
	if err != nil {
		return err
	}
	defer closeStore(st, &err)

	info, err := st.Inspect()
	if err != nil {
		return err
	}
	return output.NewPrinter(cmd.OutOrStdout(), format).Print(newInfoView(info))
}

// infoView is the printable form of store.Info.
type infoView struct {
	Path           string `json:"path" yaml:"path"`
	Flags          string `json:"flags" yaml:"flags"`
	Magic          string `json:"magic" yaml:"magic"`
	StoredCapacity uint64 `json:"stored_capacity" yaml:"stored_capacity"`
	Capacity       uint64 `json:"capacity" yaml:"capacity"`
	WriteCursor    uint64 `json:"write_cursor" yaml:"write_cursor"`
	SyncCursor     uint64 `json:"sync_cursor" yaml:"sync_cursor"`
	Used           uint64 `json:"used" yaml:"used"`
	Remaining      uint64 `json:"remaining" yaml:"remaining"`
	Pending        uint64 `json:"pending" yaml:"pending"`
	PageSize       uint64 `json:"page_size" yaml:"page_size"`
}

func newInfoView(info store.Info) infoView {
	return infoView{
		Path:           info.Path,
		Flags:          info.Flags.String(),
		Magic:          fmt.Sprintf("0x%08X", info.Magic),
		StoredCapacity: info.StoredCapacity,
		Capacity:       info.Capacity,
		WriteCursor:    info.WriteCursor,
		SyncCursor:     info.SyncCursor,
		Used:           info.Used(),
		Remaining:      info.Remaining(),
		Pending:        info.Pending(),
		PageSize:       info.PageSize,
	}
}

func (v infoView) Headers() []string {
	return []string{"Field", "Value"}
}

func (v infoView) Rows() [][]string {
	pct := 0.0
	if v.Capacity > 0 {
		pct = float64(v.Used) / float64(v.Capacity) * 100
	}
	return [][]string{
		{"Path", v.Path},
		{"Flags", v.Flags},
		{"Magic", v.Magic},
		{"Capacity", fmt.Sprintf("%d (%s)", v.Capacity, bytesize.ByteSize(v.Capacity).Human())},
		{"Stored capacity", fmt.Sprintf("%d", v.StoredCapacity)},
		{"Write cursor", fmt.Sprintf("%d", v.WriteCursor)},
		{"Sync cursor", fmt.Sprintf("%d", v.SyncCursor)},
		{"Used", fmt.Sprintf("%s (%.1f%%)", bytesize.ByteSize(v.Used).Human(), pct)},
		{"Remaining", bytesize.ByteSize(v.Remaining).Human()},
		{"Pending sync", bytesize.ByteSize(v.Pending).Human()},
		{"Page size", fmt.Sprintf("%d", v.PageSize)},
	}
}
