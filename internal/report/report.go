// Package report writes the training summary workbook.
package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/xuri/excelize/v2"

	"smesales/internal/dataset"
	"smesales/internal/ml/automl"
	"smesales/internal/ml/metrics"
)

const (
	SheetLeaderboard = "Leaderboard"
	SheetModel       = "Model"
	SheetDataset     = "Dataset"
)

// Input report data
type Input struct {
	RunID       string
	Target      string
	Leaderboard []automl.Result
	Tuned       automl.Result
	Holdout     *metrics.Scores
	Summary     dataset.Summary
}

// ProgressEvent report progress
type ProgressEvent struct {
	Percent int
	Stage   string
}

func reportProgress(progress func(ProgressEvent), percent int, stage string) {
	if progress == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	progress(ProgressEvent{Percent: percent, Stage: stage})
}

// Build lays the run out over three sheets. The caller closes the file.
func Build(in Input, progress func(ProgressEvent)) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetLeaderboard); err != nil {
		_ = f.Close()
		return nil, err
	}
	reportProgress(progress, 10, "leaderboard")
	if err := writeLeaderboard(f, in.Leaderboard); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write leaderboard: %w", err)
	}

	reportProgress(progress, 50, "model")
	if _, err := f.NewSheet(SheetModel); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeModel(f, in); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write model sheet: %w", err)
	}

	reportProgress(progress, 80, "dataset")
	if _, err := f.NewSheet(SheetDataset); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeDataset(f, in.Summary); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write dataset sheet: %w", err)
	}

	f.SetActiveSheet(0)
	reportProgress(progress, 100, "done")
	return f, nil
}

// Save builds the workbook and writes it to path.
func Save(path string, in Input, progress func(ProgressEvent)) error {
	f, err := Build(in, progress)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report %s: %w", path, err)
	}
	return nil
}

func writeLeaderboard(f *excelize.File, board []automl.Result) error {
	header := []interface{}{"Rank", "Kind", "Model"}
	for _, m := range metrics.All {
		header = append(header, string(m))
	}
	header = append(header, "R2 std")
	if err := f.SetSheetRow(SheetLeaderboard, "A1", &header); err != nil {
		return err
	}

	for i, res := range board {
		row := []interface{}{i + 1, res.Kind, res.Name}
		for _, m := range metrics.All {
			row = append(row, roundScore(res.Mean.Get(m)))
		}
		row = append(row, roundScore(res.Std.R2))
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetLeaderboard, cell, &row); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetLeaderboard, "A1", last, style); err != nil {
		return err
	}
	return f.SetColWidth(SheetLeaderboard, "C", "C", 28)
}

func writeModel(f *excelize.File, in Input) error {
	rows := [][]interface{}{
		{"Run", in.RunID},
		{"Target", in.Target},
		{"Estimator", in.Tuned.Name},
		{"Kind", in.Tuned.Kind},
	}

	keys := make([]string, 0, len(in.Tuned.Params))
	for k := range in.Tuned.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, []interface{}{"param " + k, in.Tuned.Params[k]})
	}

	for _, m := range metrics.All {
		rows = append(rows, []interface{}{"CV " + string(m), roundScore(in.Tuned.Mean.Get(m))})
	}
	if in.Holdout != nil {
		for _, m := range metrics.All {
			rows = append(rows, []interface{}{"Holdout " + string(m), roundScore(in.Holdout.Get(m))})
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetModel, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetModel, "A", "A", 20)
}

func writeDataset(f *excelize.File, s dataset.Summary) error {
	header := []interface{}{"Column", "Kind", "Distinct", "Missing"}
	if err := f.SetSheetRow(SheetDataset, "A1", &header); err != nil {
		return err
	}
	for i, c := range s.Columns {
		row := []interface{}{c.Name, string(c.Kind), c.Distinct, c.Missing}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetDataset, cell, &row); err != nil {
			return err
		}
	}
	footer := []interface{}{"Rows", s.Rows}
	cell, err := excelize.CoordinatesToCellName(1, len(s.Columns)+3)
	if err != nil {
		return err
	}
	return f.SetSheetRow(SheetDataset, cell, &footer)
}

// roundScore keeps four decimals; undefined scores become blank cells.
func roundScore(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	scale := math.Pow10(4)
	return math.Round(v*scale) / scale
}
