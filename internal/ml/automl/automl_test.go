package automl

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smesales/internal/dataset"
	"smesales/internal/ml/metrics"
	"smesales/internal/model"
)

func synthTable(t *testing.T, n int) *model.Table {
	t.Helper()
	f := dataset.Synthesize(n, 11)
	schema, err := dataset.InferSchema(f, model.ColMonthlySales)
	require.NoError(t, err)
	tbl, err := dataset.BuildTable(f, schema)
	require.NoError(t, err)
	return tbl
}

func quickConfig() Config {
	cfg := DefaultConfig()
	cfg.Folds = 3
	cfg.Include = []string{"dummy", "ridge", "dt"}
	return cfg
}

func TestKFold_PartitionsEveryRowOnce(t *testing.T) {
	folds := kFold(23, 5, rand.New(rand.NewSource(1)))
	require.Len(t, folds, 5)

	var seen []int
	for _, f := range folds {
		assert.Equal(t, 23, len(f.Train)+len(f.Valid))
		seen = append(seen, f.Valid...)
	}
	sort.Ints(seen)
	for i, v := range seen {
		assert.Equal(t, i, v)
	}
}

func TestSplitHoldout(t *testing.T) {
	train, holdout := splitHoldout(10, 0.7, rand.New(rand.NewSource(1)))
	assert.Len(t, train, 7)
	assert.Len(t, holdout, 3)

	train, holdout = splitHoldout(2, 0.99, rand.New(rand.NewSource(1)))
	assert.Len(t, train, 1)
	assert.Len(t, holdout, 1)

	train, holdout = splitHoldout(5, 1, rand.New(rand.NewSource(1)))
	assert.Len(t, train, 5)
	assert.Empty(t, holdout)
}

func TestSetup_ClampsFoldsAndRejectsTinyData(t *testing.T) {
	tbl := synthTable(t, 8)
	cfg := quickConfig()
	cfg.Folds = 50

	e, err := Setup(tbl, cfg)
	require.NoError(t, err)
	assert.Equal(t, e.TrainRows(), e.Folds())
	assert.True(t, e.HasHoldout())

	_, err = Setup(synthTable(t, 2), cfg)
	assert.Error(t, err)

	cfg.TrainSize = 0
	_, err = Setup(tbl, cfg)
	assert.Error(t, err)
}

func TestCompareModels_RanksByR2(t *testing.T) {
	e, err := Setup(synthTable(t, 150), quickConfig())
	require.NoError(t, err)

	board, err := e.CompareModels(context.Background(), metrics.R2)
	require.NoError(t, err)
	require.Len(t, board, 3)

	for i := 1; i < len(board); i++ {
		assert.GreaterOrEqual(t, board[i-1].Mean.R2, board[i].Mean.R2)
	}
	assert.Equal(t, "dummy", board[len(board)-1].Kind)
	assert.Greater(t, board[0].Mean.R2, 0.5)
	assert.Len(t, Top(board, 2), 2)
	assert.Len(t, board[0].Folds, 3)
}

func TestCompareModels_Cancelled(t *testing.T) {
	e, err := Setup(synthTable(t, 40), quickConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.CompareModels(ctx, metrics.R2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTuneModel_NeverWorseThanBase(t *testing.T) {
	e, err := Setup(synthTable(t, 120), quickConfig())
	require.NoError(t, err)

	base, err := e.CrossValidate("dt", nil)
	require.NoError(t, err)

	tuned, err := e.TuneModel(context.Background(), base, metrics.R2, 6)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, tuned.Mean.R2, base.Mean.R2)

	dummy, err := e.CrossValidate("dummy", nil)
	require.NoError(t, err)
	same, err := e.TuneModel(context.Background(), dummy, metrics.R2, 6)
	require.NoError(t, err)
	assert.Equal(t, dummy.Params, same.Params)
}

func TestFinalize_ReproducibleWithSeed(t *testing.T) {
	tbl := synthTable(t, 100)
	sample := tbl.Row(0)

	run := func() float64 {
		e, err := Setup(tbl, quickConfig())
		require.NoError(t, err)
		board, err := e.CompareModels(context.Background(), metrics.R2)
		require.NoError(t, err)
		tuned, err := e.TuneModel(context.Background(), board[0], metrics.R2, 3)
		require.NoError(t, err)
		m, err := e.Finalize(tuned)
		require.NoError(t, err)
		v, err := m.Predict(sample)
		require.NoError(t, err)
		return v
	}

	first, second := run(), run()
	assert.InDelta(t, first, second, 1e-9)
}

func TestFinalize_FitsTrainAndHoldout(t *testing.T) {
	tbl := synthTable(t, 80)
	e, err := Setup(tbl, quickConfig())
	require.NoError(t, err)
	require.True(t, e.HasHoldout())

	rows := e.finalRows()
	assert.Equal(t, tbl.Len(), rows.Len())
	assert.Equal(t, e.TrainRows(), rows.Len()-e.holdout.Len())

	m, err := e.Finalize(Result{Kind: "ridge"})
	require.NoError(t, err)
	want, err := e.fit(rows, "ridge", nil)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		got, err := m.Predict(tbl.Row(i))
		require.NoError(t, err)
		exp, err := want.Predict(tbl.Row(i))
		require.NoError(t, err)
		assert.InDelta(t, exp, got, 1e-9)
	}
	assert.Len(t, m.Pipeline.OutputNames(), m.Pipeline.Width())
}

func TestFitted_PredictAbsorbsUnseenCategory(t *testing.T) {
	tbl := synthTable(t, 60)
	e, err := Setup(tbl, quickConfig())
	require.NoError(t, err)
	m, err := e.Finalize(Result{Kind: "ridge"})
	require.NoError(t, err)

	rec := tbl.Row(0)
	rec.Cats[model.ColState] = "Sokoto"
	v, err := m.Predict(rec)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
}

func TestHoldout(t *testing.T) {
	e, err := Setup(synthTable(t, 80), quickConfig())
	require.NoError(t, err)
	s, err := e.Holdout(Result{Kind: "ridge"})
	require.NoError(t, err)
	assert.Greater(t, s.R2, 0.3)
}

func TestDetectTask(t *testing.T) {
	many := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		many = append(many, string(rune('0'+i%10))+"."+string(rune('0'+i/10)))
	}
	assert.Equal(t, TaskRegression, DetectTask(many))
	assert.Equal(t, TaskClassification, DetectTask([]string{"1", "2", "1", "2"}))
	assert.Equal(t, TaskClassification, DetectTask([]string{"high", "low"}))

	assert.NoError(t, RequireRegression("y", many))
	assert.ErrorIs(t, RequireRegression("y", []string{"a"}), ErrNotRegression)
}
