package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/gpeterson/vidnorm/internal/transcode"
)

// renderSummary formats the run summary table plus a failure section
// when any file failed.
func renderSummary(summary *transcode.Summary, outcomes []transcode.Outcome) string {
	var b strings.Builder

	headers := []string{"Found", "Skipped", "Succeeded", "Failed", "Saved"}
	row := []string{
		strconv.Itoa(summary.Found),
		strconv.Itoa(summary.Skipped),
		strconv.Itoa(summary.Succeeded),
		strconv.Itoa(summary.Failed),
		formatSaved(summary.SpaceSaved),
	}
	aligns := []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight}
	b.WriteString(renderTable(headers, [][]string{row}, aligns))

	failures := make([]transcode.Outcome, 0)
	for _, o := range outcomes {
		if !o.Succeeded() {
			failures = append(failures, o)
		}
	}
	if len(failures) > 0 {
		b.WriteString("\n\nFailures:\n")
		for _, o := range failures {
			fmt.Fprintf(&b, "  %s\n    %s\n", o.Input, o.Detail)
		}
	}

	return b.String()
}

// formatSaved renders a byte delta; a negative delta means the outputs
// grew, which legitimately happens when re-encoding efficient sources.
func formatSaved(delta int64) string {
	if delta < 0 {
		return "-" + humanize.IBytes(uint64(-delta))
	}
	return humanize.IBytes(uint64(delta))
}
