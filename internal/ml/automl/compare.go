package automl

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"smesales/internal/ml/estimator"
	"smesales/internal/ml/metrics"
	"smesales/internal/parallel"
)

// Result is the cross-validated score of one family/params pair.
type Result struct {
	Kind   string           `json:"kind"`
	Name   string           `json:"name"`
	Params estimator.Params `json:"params"`
	Mean   metrics.Scores   `json:"mean"`
	Std    metrics.Scores   `json:"std"`
	Folds  []metrics.Scores `json:"-"`
}

// CrossValidate scores kind/params on every fold. Folds run concurrently;
// the scores are collected by fold index.
func (e *Experiment) CrossValidate(kind string, params estimator.Params) (Result, error) {
	fam, err := estimator.Lookup(kind)
	if err != nil {
		return Result{}, err
	}
	if params == nil {
		params = fam.Defaults.Clone()
	}

	scores, err := parallel.Map(len(e.folds), e.cfg.Workers, func(i int) (metrics.Scores, error) {
		f := e.folds[i]
		return e.score(e.train.Subset(f.Train), e.train.Subset(f.Valid), kind, params)
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Kind:   kind,
		Name:   fam.Name,
		Params: fam.New(params, e.cfg.Seed).Params(),
		Mean:   metrics.Mean(scores),
		Std:    metrics.StdDev(scores),
		Folds:  scores,
	}, nil
}

// CompareModels cross-validates every candidate family with default
// params and returns the leaderboard ranked by sortBy. Ties fall back to
// RMSE, then kind. Families that fail to fit are logged and dropped.
func (e *Experiment) CompareModels(ctx context.Context, sortBy metrics.Metric) ([]Result, error) {
	fams, err := e.candidates()
	if err != nil {
		return nil, err
	}

	board := make([]Result, 0, len(fams))
	for i, fam := range fams {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.progress("compare "+fam.Kind, i, len(fams))

		res, err := e.CrossValidate(fam.Kind, nil)
		if err != nil {
			log.Warningf("compare: %s skipped: %v", fam.Kind, err)
			continue
		}
		log.Infof("compare: %-6s R2=%.4f RMSE=%.2f MAE=%.2f", res.Kind, res.Mean.R2, res.Mean.RMSE, res.Mean.MAE)
		board = append(board, res)
	}
	e.progress("compare", len(fams), len(fams))

	if len(board) == 0 {
		return nil, errors.New("automl: every candidate failed to fit")
	}
	Rank(board, sortBy)
	return board, nil
}

// Rank sorts results best first under m.
func Rank(board []Result, m metrics.Metric) {
	sort.SliceStable(board, func(i, j int) bool {
		a, b := board[i].Mean.Get(m), board[j].Mean.Get(m)
		if a != b {
			return m.Better(a, b)
		}
		if board[i].Mean.RMSE != board[j].Mean.RMSE {
			return board[i].Mean.RMSE < board[j].Mean.RMSE
		}
		return board[i].Kind < board[j].Kind
	})
}

// Top returns the first n results of a ranked leaderboard.
func Top(board []Result, n int) []Result {
	if n <= 0 || n > len(board) {
		n = len(board)
	}
	return board[:n]
}

// Holdout fits res on the whole CV partition and scores it on the held
// out rows.
func (e *Experiment) Holdout(res Result) (metrics.Scores, error) {
	if e.holdout == nil {
		return metrics.Scores{}, fmt.Errorf("automl: experiment has no holdout rows")
	}
	return e.score(e.train, e.holdout, res.Kind, res.Params)
}

// Finalize refits res on every row, holdout included.
func (e *Experiment) Finalize(res Result) (*Fitted, error) {
	e.progress("finalize", 0, 1)
	m, err := e.fit(e.finalRows(), res.Kind, res.Params)
	if err != nil {
		return nil, err
	}
	log.Debugf("finalize: %s over %d features %v", res.Kind, m.Pipeline.Width(), m.Pipeline.OutputNames())
	e.progress("finalize", 1, 1)
	return m, nil
}
