// Package report renders the outcome of a synchronization run.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	syncpkg "github.com/MarkoPoloResearchLab/extsync/internal/sync"
)

var summaryHeaders = []string{"Input", "Output", "Copied", "Updated", "Unchanged", "Deleted", "Written"}

// PrintSummary writes one row per synchronized directory pair followed by a
// totals row. The table is rendered in full before anything is written, so
// the returned error is the failure to write it to w.
func PrintSummary(w io.Writer, result syncpkg.SyncResult) error {
	var rendered bytes.Buffer
	table := tablewriter.NewWriter(&rendered)
	table.SetHeader(summaryHeaders)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, directory := range result.Directories {
		table.Append([]string{
			directory.InputDirectory,
			directory.OutputDirectory,
			strconv.Itoa(directory.Copied),
			strconv.Itoa(directory.Updated),
			strconv.Itoa(directory.Unchanged),
			strconv.Itoa(directory.Deleted),
			humanize.Bytes(uint64(directory.BytesWritten)),
		})
	}
	table.Append([]string{
		"TOTAL",
		strconv.Itoa(result.DirectoryCount) + " pairs",
		strconv.Itoa(result.ActionCounters[syncpkg.ActionCopied]),
		strconv.Itoa(result.ActionCounters[syncpkg.ActionUpdated]),
		strconv.Itoa(result.ActionCounters[syncpkg.ActionUnchanged]),
		strconv.Itoa(result.ActionCounters[syncpkg.ActionDeleted]),
		humanize.Bytes(uint64(result.BytesWritten)),
	})

	table.Render()
	if _, err := rendered.WriteTo(w); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
