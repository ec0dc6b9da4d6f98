// Package metrics scores regression predictions against observed values.
package metrics

import (
	"fmt"
	"math"
	"slices"
	"strings"

	scimetrics "github.com/YuminosukeSato/scigo/metrics"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Metric scoring rule
type Metric string

const (
	MAE   Metric = "MAE"
	MSE   Metric = "MSE"
	RMSE  Metric = "RMSE"
	R2    Metric = "R2"
	RMSLE Metric = "RMSLE"
	MAPE  Metric = "MAPE"
)

// All lists the metrics in leaderboard column order.
var All = []Metric{MAE, MSE, RMSE, R2, RMSLE, MAPE}

// ParseMetric resolves a case-insensitive metric name.
func ParseMetric(name string) (Metric, error) {
	for _, m := range All {
		if strings.EqualFold(string(m), strings.TrimSpace(name)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", name)
}

// HigherIsBetter reports the optimisation direction of m.
func (m Metric) HigherIsBetter() bool {
	return m == R2
}

// Better reports whether a beats b under m.
func (m Metric) Better(a, b float64) bool {
	if math.IsNaN(b) {
		return !math.IsNaN(a)
	}
	if m.HigherIsBetter() {
		return a > b
	}
	return a < b
}

// Scores holds every metric for one evaluation.
type Scores struct {
	MAE   float64 `json:"mae"`
	MSE   float64 `json:"mse"`
	RMSE  float64 `json:"rmse"`
	R2    float64 `json:"r2"`
	RMSLE float64 `json:"rmsle"`
	MAPE  float64 `json:"mape"`
}

func (s Scores) Get(m Metric) float64 {
	switch m {
	case MAE:
		return s.MAE
	case MSE:
		return s.MSE
	case RMSE:
		return s.RMSE
	case R2:
		return s.R2
	case RMSLE:
		return s.RMSLE
	case MAPE:
		return s.MAPE
	}
	return math.NaN()
}

// Evaluate scores predicted against actual. Both slices must have the same
// non-zero length.
func Evaluate(actual, predicted []float64) (Scores, error) {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return Scores{}, fmt.Errorf("metrics: length mismatch %d vs %d", len(actual), len(predicted))
	}
	yTrue := mat.NewVecDense(len(actual), slices.Clone(actual))
	yPred := mat.NewVecDense(len(predicted), slices.Clone(predicted))

	var s Scores
	var err error
	if s.MAE, err = scimetrics.MAE(yTrue, yPred); err != nil {
		return Scores{}, fmt.Errorf("metrics: %w", err)
	}
	if s.MSE, err = scimetrics.MSE(yTrue, yPred); err != nil {
		return Scores{}, fmt.Errorf("metrics: %w", err)
	}
	if s.RMSE, err = scimetrics.RMSE(yTrue, yPred); err != nil {
		return Scores{}, fmt.Errorf("metrics: %w", err)
	}
	if s.R2, err = rSquared(yTrue, yPred); err != nil {
		return Scores{}, fmt.Errorf("metrics: %w", err)
	}
	s.RMSLE = rmsle(actual, predicted)
	s.MAPE = mape(actual, predicted)
	return s, nil
}

// rSquared is the coefficient of determination. A constant target has no
// variance to explain: a perfect fit scores 1, anything else 0.
func rSquared(yTrue, yPred *mat.VecDense) (float64, error) {
	actual, predicted := yTrue.RawVector().Data, yPred.RawVector().Data
	if floats.Max(actual) == floats.Min(actual) {
		if floats.EqualApprox(actual, predicted, 1e-12) {
			return 1, nil
		}
		return 0, nil
	}
	return scimetrics.R2Score(yTrue, yPred)
}

// rmsle clamps negatives to zero before taking logs.
func rmsle(actual, predicted []float64) float64 {
	var sum float64
	for i, y := range actual {
		l := math.Log1p(math.Max(predicted[i], 0)) - math.Log1p(math.Max(y, 0))
		sum += l * l
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// mape is a fraction, not a percentage; zero targets are skipped.
func mape(actual, predicted []float64) float64 {
	var sum float64
	n := 0
	for i, y := range actual {
		if y != 0 {
			sum += math.Abs((predicted[i] - y) / y)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Mean averages fold scores metric by metric.
func Mean(folds []Scores) Scores {
	if len(folds) == 0 {
		return Scores{}
	}
	col := func(m Metric) float64 {
		values := make([]float64, len(folds))
		for i, f := range folds {
			values[i] = f.Get(m)
		}
		return stat.Mean(values, nil)
	}
	return Scores{
		MAE:   col(MAE),
		MSE:   col(MSE),
		RMSE:  col(RMSE),
		R2:    col(R2),
		RMSLE: col(RMSLE),
		MAPE:  col(MAPE),
	}
}

// StdDev is the per-metric standard deviation across folds.
func StdDev(folds []Scores) Scores {
	if len(folds) < 2 {
		return Scores{}
	}
	col := func(m Metric) float64 {
		values := make([]float64, len(folds))
		for i, f := range folds {
			values[i] = f.Get(m)
		}
		return stat.StdDev(values, nil)
	}
	return Scores{
		MAE:   col(MAE),
		MSE:   col(MSE),
		RMSE:  col(RMSE),
		R2:    col(R2),
		RMSLE: col(RMSLE),
		MAPE:  col(MAPE),
	}
}
