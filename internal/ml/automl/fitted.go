package automl

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"smesales/internal/ml/estimator"
	"smesales/internal/ml/preprocess"
	"smesales/internal/model"
)

// Fitted is a complete inference pipeline: preprocessing plus estimator.
// It is read-only after fitting and safe for concurrent use.
type Fitted struct {
	Pipeline  *preprocess.Pipeline
	Regressor estimator.Regressor
}

// PredictTable predicts every row of t.
func (f *Fitted) PredictTable(t *model.Table) ([]float64, error) {
	x, err := f.Pipeline.Transform(t)
	if err != nil {
		return nil, err
	}
	return f.Regressor.Predict(x), nil
}

// Predict runs inference on one record and guarantees a finite result.
func (f *Fitted) Predict(rec model.Record) (float64, error) {
	row := make([]float64, f.Pipeline.Width())
	if err := f.Pipeline.TransformRecord(rec, row); err != nil {
		return 0, err
	}

	out := f.Regressor.Predict(mat.NewDense(1, len(row), row))
	if len(out) != 1 || math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
		return 0, fmt.Errorf("automl: %s produced a non-finite prediction", f.Regressor.Kind())
	}
	return out[0], nil
}
