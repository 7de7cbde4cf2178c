package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/will-x86/wordhound"
)

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

// WriteExcel writes every result to a spreadsheet at path, one row per
// URL, with a summary sheet alongside.
func WriteExcel(path string, sum Summary, results []*wordhound.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headers := []any{"URL", "Status", "Matches", "Links", "Error", "Detail", "Screenshot", "At"}
	if err := f.SetSheetRow(resultsSheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, res := range results {
		row := []any{
			res.URL,
			string(res.Status),
			strings.Join(res.Matches, ", "),
			strings.Join(res.Links, "\n"),
			string(res.ErrorKind),
			res.Detail,
			res.Screenshot,
			res.At.Format(time.RFC3339),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write result row: %w", err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	summary := [][]any{
		{"Run", sum.RunID},
		{"Started", sum.Started.Format(time.RFC3339)},
		{"Finished", sum.Finished.Format(time.RFC3339)},
		{"Added", sum.Added},
		{"Processed", sum.Processed},
		{"Dictionary words", sum.Words},
		{"Interesting domains", strings.Join(sum.Domains, ", ")},
		{"Seeds", strings.Join(sum.Seeds, ", ")},
	}
	for i, row := range summary {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
