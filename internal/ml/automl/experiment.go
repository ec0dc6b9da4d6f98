// Package automl compares the candidate regression families under k-fold
// cross-validation, tunes the winner with a seeded random search and
// refits it on all data. Every random choice derives from Config.Seed.
package automl

import (
	"errors"
	"fmt"
	"math/rand"
	"runtime"

	"github.com/op/go-logging"

	"smesales/internal/ml/estimator"
	"smesales/internal/ml/metrics"
	"smesales/internal/ml/preprocess"
	"smesales/internal/model"
)

var log = logging.MustGetLogger("automl")

// Config experiment config
type Config struct {
	Seed       int64
	TrainSize  float64 // share of rows used for CV; the rest is holdout
	Folds      int
	Workers    int      // concurrent fold fits, <= 0 means GOMAXPROCS
	Include    []string // estimator kinds to compare, empty means all
	Preprocess preprocess.Options
	Progress   func(ProgressEvent)
}

// ProgressEvent reports experiment progress (for the operator console).
type ProgressEvent struct {
	Stage string
	Done  int
	Total int
}

// DefaultConfig mirrors the usual AutoML defaults.
func DefaultConfig() Config {
	return Config{
		Seed:       42,
		TrainSize:  0.7,
		Folds:      10,
		Preprocess: preprocess.Options{Normalize: true, Transformation: true},
	}
}

// Experiment is a set-up dataset with fixed holdout and CV folds.
type Experiment struct {
	cfg     Config
	train   *model.Table
	holdout *model.Table
	folds   []Fold
}

// Setup shuffles and splits the data. The same seed always yields the same
// holdout and folds.
func Setup(data *model.Table, cfg Config) (*Experiment, error) {
	if data == nil || data.Len() == 0 {
		return nil, errors.New("automl: no data")
	}
	if cfg.TrainSize <= 0 || cfg.TrainSize > 1 {
		return nil, fmt.Errorf("automl: train size %.2f out of range (0, 1]", cfg.TrainSize)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	trainIdx, holdoutIdx := splitHoldout(data.Len(), cfg.TrainSize, rng)
	if len(trainIdx) < 2 {
		return nil, fmt.Errorf("automl: need at least 2 training rows, have %d", len(trainIdx))
	}

	k := cfg.Folds
	if k < 2 {
		k = 2
	}
	if k > len(trainIdx) {
		k = len(trainIdx)
	}

	e := &Experiment{
		cfg:   cfg,
		train: data.Subset(trainIdx),
		folds: kFold(len(trainIdx), k, rng),
	}
	if len(holdoutIdx) > 0 {
		e.holdout = data.Subset(holdoutIdx)
	}

	holdoutRows := 0
	if e.holdout != nil {
		holdoutRows = e.holdout.Len()
	}
	log.Infof("setup: %d rows, %d train, %d holdout, %d folds, seed %d",
		data.Len(), e.train.Len(), holdoutRows, len(e.folds), cfg.Seed)
	return e, nil
}

// Folds returns the number of CV folds actually used.
func (e *Experiment) Folds() int {
	return len(e.folds)
}

// TrainRows CV partition size
func (e *Experiment) TrainRows() int {
	return e.train.Len()
}

// finalRows is the training split followed by the holdout.
func (e *Experiment) finalRows() *model.Table {
	if e.holdout == nil {
		return e.train
	}
	return e.train.Concat(e.holdout)
}

// HasHoldout reports whether rows were held out.
func (e *Experiment) HasHoldout() bool {
	return e.holdout != nil
}

func (e *Experiment) candidates() ([]estimator.Family, error) {
	if len(e.cfg.Include) == 0 {
		return estimator.Catalog(), nil
	}
	out := make([]estimator.Family, 0, len(e.cfg.Include))
	for _, kind := range e.cfg.Include {
		f, err := estimator.Lookup(kind)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (e *Experiment) progress(stage string, done, total int) {
	if e.cfg.Progress == nil {
		return
	}
	e.cfg.Progress(ProgressEvent{Stage: stage, Done: done, Total: total})
}

// fit trains pipeline and estimator on t.
func (e *Experiment) fit(t *model.Table, kind string, params estimator.Params) (*Fitted, error) {
	fam, err := estimator.Lookup(kind)
	if err != nil {
		return nil, err
	}
	pipe, err := preprocess.Fit(t, e.cfg.Preprocess)
	if err != nil {
		return nil, err
	}
	x, err := pipe.Transform(t)
	if err != nil {
		return nil, err
	}
	reg := fam.New(params, e.cfg.Seed)
	if err := reg.Fit(x, t.Target); err != nil {
		return nil, fmt.Errorf("fit %s: %w", kind, err)
	}
	return &Fitted{Pipeline: pipe, Regressor: reg}, nil
}

// score fits on train and evaluates on valid.
func (e *Experiment) score(train, valid *model.Table, kind string, params estimator.Params) (metrics.Scores, error) {
	m, err := e.fit(train, kind, params)
	if err != nil {
		return metrics.Scores{}, err
	}
	pred, err := m.PredictTable(valid)
	if err != nil {
		return metrics.Scores{}, err
	}
	return metrics.Evaluate(valid.Target, pred)
}
