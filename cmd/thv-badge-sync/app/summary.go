package app

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/stacklok/toolhive-badge-sync/internal/sync"
)

// writeSummary prints the outcome of a run as a two-column table
func writeSummary(w io.Writer, result *sync.Result) error {
	newTS := "-"
	if result.NewTS != nil {
		newTS = strconv.FormatInt(*result.NewTS, 10)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")

	rows := [][]string{
		{"Run ID", result.RunID},
		{"Stop reason", string(result.StopReason)},
		{"Pages fetched", strconv.Itoa(result.PagesFetched)},
		{"Rendered", strconv.Itoa(result.Rendered)},
		{"Skipped (invalid)", strconv.Itoa(result.SkippedInvalid)},
		{"Previous watermark", strconv.FormatInt(result.PreviousTS, 10)},
		{"First record timestamp", newTS},
		{"Checkpoint written", strconv.FormatBool(result.CheckpointWritten)},
	}
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}

	return table.Render()
}
