package dataset

import (
	"smesales/internal/model"
)

// ColumnSummary describes one column as seen in the raw file.
type ColumnSummary struct {
	Name     string            `json:"name"`
	Kind     model.FeatureKind `json:"kind"`
	Distinct int               `json:"distinct"`
	Missing  int               `json:"missing"`
}

// Summary is the dataset overview printed before training.
type Summary struct {
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
	Preview [][]string      `json:"preview"`
}

// MissingTotal sums the empty cells across all columns.
func (s Summary) MissingTotal() int {
	total := 0
	for _, c := range s.Columns {
		total += c.Missing
	}
	return total
}

// Inspect summarises a frame without validating it, so it also works on
// files that will later be rejected.
func Inspect(f *Frame, previewRows int) Summary {
	s := Summary{Rows: f.Len()}

	for j, name := range f.Header {
		values := make([]string, 0, len(f.Rows))
		missing := 0
		for _, row := range f.Rows {
			if j >= len(row) || row[j] == "" {
				missing++
				continue
			}
			values = append(values, row[j])
		}
		s.Columns = append(s.Columns, ColumnSummary{
			Name:     name,
			Kind:     inferKind(values),
			Distinct: countDistinct(values),
			Missing:  missing,
		})
	}

	end := previewRows
	if end > len(f.Rows) {
		end = len(f.Rows)
	}
	s.Preview = f.Rows[:end]
	return s
}

func countDistinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// inferKind types a column from its non-empty cells: all whole numbers is
// integer, all numbers is float, anything else categorical.
func inferKind(values []string) model.FeatureKind {
	if len(values) == 0 {
		return model.KindCategorical
	}
	kind := model.KindInteger
	for _, v := range values {
		n, err := model.ParseNumber(v)
		if err != nil {
			return model.KindCategorical
		}
		if n != float64(int64(n)) {
			kind = model.KindFloat
		}
	}
	return kind
}
