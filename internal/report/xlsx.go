package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tupyy/expsum/internal/models"
)

const runsSheet = "runs"

var runsHeader = []any{
	"id", "base", "terms", "workers", "mechanism", "status", "total",
	"completed", "failed", "iterations", "spawned", "max_live",
	"created_at", "finished_at", "error",
}

// ExportXLSX writes runs to a workbook at path, one row per run on the
// "runs" sheet.
func ExportXLSX(path string, runs []models.Run) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", runsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := f.SetSheetRow(runsSheet, "A1", &runsHeader); err != nil {
		return err
	}

	for i, r := range runs {
		finished := ""
		if r.FinishedAt != nil {
			finished = r.FinishedAt.UTC().Format("2006-01-02 15:04:05")
		}
		row := []any{
			r.ID,
			r.Params.Base,
			r.Params.Terms,
			r.Params.Workers,
			r.Params.Mechanism.String(),
			string(r.Status),
			r.Result.Total,
			r.Result.Completed,
			r.Result.Failed,
			r.Result.Stats.Iterations,
			r.Result.Stats.Spawned,
			r.Result.Stats.MaxLive,
			r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			finished,
			r.Error,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(runsSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetPanes(runsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
