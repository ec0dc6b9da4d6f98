package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_KnownValues(t *testing.T) {
	actual := []float64{1, 2, 3, 4}
	predicted := []float64{1, 2, 3, 6}

	s, err := Evaluate(actual, predicted)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, s.MAE, 1e-12)
	assert.InDelta(t, 1.0, s.MSE, 1e-12)
	assert.InDelta(t, 1.0, s.RMSE, 1e-12)
	// tss = 5, rss = 4
	assert.InDelta(t, 0.2, s.R2, 1e-12)
	assert.InDelta(t, 0.125, s.MAPE, 1e-12)
	assert.InDelta(t, math.Sqrt(math.Pow(math.Log(7)-math.Log(5), 2)/4), s.RMSLE, 1e-12)
}

func TestEvaluate_PerfectAndConstant(t *testing.T) {
	s, err := Evaluate([]float64{3, 3, 3}, []float64{3, 3, 3})
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.R2)

	s, err = Evaluate([]float64{3, 3, 3}, []float64{2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.R2)
}

func TestEvaluate_LeavesInputsAlone(t *testing.T) {
	actual := []float64{10, 0, 30}
	predicted := []float64{12, 1, 27}

	s, err := Evaluate(actual, predicted)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 0, 30}, actual)
	assert.Equal(t, []float64{12, 1, 27}, predicted)

	// zero target skipped: (0.2 + 0.1) / 2
	assert.InDelta(t, 0.15, s.MAPE, 1e-12)
	assert.InDelta(t, 2.0, s.MAE, 1e-12)
	assert.InDelta(t, math.Sqrt(14.0/3), s.RMSE, 1e-12)
}

func TestEvaluate_LengthMismatch(t *testing.T) {
	_, err := Evaluate([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
	_, err = Evaluate(nil, nil)
	assert.Error(t, err)
}

func TestMetricDirection(t *testing.T) {
	assert.True(t, R2.Better(0.9, 0.8))
	assert.True(t, RMSE.Better(1, 2))
	assert.True(t, MAE.Better(1, math.NaN()))
	assert.False(t, MAE.Better(math.NaN(), 1))

	m, err := ParseMetric("r2")
	require.NoError(t, err)
	assert.Equal(t, R2, m)
	_, err = ParseMetric("accuracy")
	assert.Error(t, err)
}

func TestMeanAndStdDev(t *testing.T) {
	folds := []Scores{{R2: 0.5, MAE: 2}, {R2: 0.7, MAE: 4}}
	mean := Mean(folds)
	assert.InDelta(t, 0.6, mean.R2, 1e-12)
	assert.InDelta(t, 3.0, mean.MAE, 1e-12)

	sd := StdDev(folds)
	assert.InDelta(t, math.Sqrt(2), sd.MAE, 1e-12)
	assert.Equal(t, Scores{}, StdDev(folds[:1]))
}
