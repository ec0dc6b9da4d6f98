// Package trainer runs the batch training job: dataset file in, model
// artifact out. Progress is published as events so the command line can
// render it while the job runs on its own goroutine.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/op/go-logging"

	"smesales/internal/artifact"
	"smesales/internal/config"
	"smesales/internal/dataset"
	"smesales/internal/ml/automl"
	"smesales/internal/ml/metrics"
	"smesales/internal/ml/preprocess"
	"smesales/internal/report"
)

var log = logging.MustGetLogger("trainer")

const previewRows = 5

// Options run options
type Options struct {
	DatasetPath string
	Target      string // empty: last column
	ModelPath   string
	ReportPath  string // empty: no report
	NSelect     int
	NIter       int
	Optimize    metrics.Metric
	Experiment  automl.Config
}

// OptionsFromConfig maps the [data] and [training] sections.
func OptionsFromConfig(cfg *config.AppConfig) Options {
	t := cfg.Training
	return Options{
		DatasetPath: cfg.Data.DatasetPath,
		Target:      t.Target,
		ModelPath:   artifact.Path(cfg.Data.ModelDir, cfg.Data.ModelName),
		ReportPath:  t.ReportPath,
		NSelect:     t.NSelect,
		NIter:       t.NIter,
		Optimize:    cfg.OptimizeMetric(),
		Experiment: automl.Config{
			Seed:      t.Seed,
			TrainSize: t.TrainSize,
			Folds:     t.Folds,
			Workers:   t.Workers,
			Include:   t.Include,
			Preprocess: preprocess.Options{
				Normalize:      t.Normalize,
				Transformation: t.Transformation,
			},
		},
	}
}

// Event types.
const (
	EventStart = "start"
	EventInfo  = "info"
	EventStage = "stage"
	EventDone  = "done"
	EventError = "error"
)

// ProgressEvent is one step of a run. The done event carries *Result in
// Data; the error event carries the error.
type ProgressEvent struct {
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Err       error       `json:"-"`
	Timestamp time.Time   `json:"timestamp"`
}

// Result run result
type Result struct {
	Artifact    *artifact.Artifact
	ModelPath   string
	ReportPath  string
	Summary     dataset.Summary
	Leaderboard []automl.Result
	Tuned       automl.Result
	Holdout     *metrics.Scores
	Duration    time.Duration
}

// Pipeline training run
type Pipeline struct {
	opts Options
}

// NewPipeline fills unset options with the experiment defaults.
func NewPipeline(opts Options) *Pipeline {
	def := automl.DefaultConfig()
	if opts.Experiment.TrainSize == 0 {
		opts.Experiment.TrainSize = def.TrainSize
	}
	if opts.Experiment.Folds == 0 {
		opts.Experiment.Folds = def.Folds
	}
	if opts.Optimize == "" {
		opts.Optimize = metrics.R2
	}
	if opts.NSelect <= 0 {
		opts.NSelect = 1
	}
	return &Pipeline{opts: opts}
}

// Start runs the pipeline on a new goroutine and returns its progress
// channel. The channel is closed after the done or error event.
func (p *Pipeline) Start(ctx context.Context) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		res, err := p.run(ctx, progressChan)
		if err != nil {
			sendProgress(progressChan, ProgressEvent{
				Type:    EventError,
				Message: err.Error(),
				Err:     err,
			})
			return
		}
		sendProgress(progressChan, ProgressEvent{
			Type:    EventDone,
			Message: fmt.Sprintf("model saved to %s", res.ModelPath),
			Data:    res,
		})
	}()

	return progressChan
}

// Run is the blocking form of Start.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	var (
		res *Result
		err error
	)
	for evt := range p.Start(ctx) {
		switch evt.Type {
		case EventDone:
			res, _ = evt.Data.(*Result)
		case EventError:
			err = evt.Err
		}
	}
	if err == nil && res == nil {
		err = errors.New("training ended without a result")
	}
	return res, err
}

func (p *Pipeline) run(ctx context.Context, progressChan chan ProgressEvent) (*Result, error) {
	startTime := time.Now()
	opts := p.opts

	sendProgress(progressChan, ProgressEvent{
		Type:    EventStart,
		Message: "loading dataset",
		Data:    map[string]string{"filename": filepath.Base(opts.DatasetPath)},
	})

	frame, err := dataset.Load(opts.DatasetPath)
	if err != nil {
		return nil, err
	}

	summary := dataset.Inspect(frame, previewRows)
	logSummary(summary)
	sendProgress(progressChan, ProgressEvent{
		Type:    EventInfo,
		Message: fmt.Sprintf("dataset has %d rows and %d columns", summary.Rows, len(summary.Columns)),
		Data:    summary,
	})

	if err := frame.Validate(); err != nil {
		return nil, err
	}
	target, err := frame.ResolveTarget(opts.Target)
	if err != nil {
		return nil, err
	}
	values, err := frame.Column(target)
	if err != nil {
		return nil, err
	}
	if err := automl.RequireRegression(target, values); err != nil {
		return nil, err
	}

	schema, err := dataset.InferSchema(frame, target)
	if err != nil {
		return nil, err
	}
	table, err := dataset.BuildTable(frame, schema)
	if err != nil {
		return nil, err
	}
	sendProgress(progressChan, ProgressEvent{
		Type:    EventInfo,
		Message: fmt.Sprintf("regression on %q with %d features", target, len(schema.Features)),
	})

	cfg := opts.Experiment
	cfg.Progress = func(evt automl.ProgressEvent) {
		sendProgress(progressChan, ProgressEvent{
			Type:    EventStage,
			Message: evt.Stage,
			Data:    evt,
		})
	}
	exp, err := automl.Setup(table, cfg)
	if err != nil {
		return nil, err
	}
	sendProgress(progressChan, ProgressEvent{
		Type:    EventInfo,
		Message: fmt.Sprintf("comparing models with %d-fold CV on %d training rows", exp.Folds(), exp.TrainRows()),
	})

	board, err := exp.CompareModels(ctx, metrics.R2)
	if err != nil {
		return nil, err
	}
	shortlist := automl.Top(board, opts.NSelect)
	for i, res := range shortlist {
		log.Infof("top %d: %-6s %-28s R2=%.4f RMSE=%.2f", i+1, res.Kind, res.Name, res.Mean.R2, res.Mean.RMSE)
	}

	tuned, err := exp.TuneModel(ctx, shortlist[0], opts.Optimize, opts.NIter)
	if err != nil {
		return nil, err
	}

	var holdout *metrics.Scores
	if exp.HasHoldout() {
		scores, err := exp.Holdout(tuned)
		if err != nil {
			return nil, err
		}
		holdout = &scores
		log.Infof("tuned model results (holdout): MAE=%.2f RMSE=%.2f R2=%.4f MAPE=%.4f",
			scores.MAE, scores.RMSE, scores.R2, scores.MAPE)
	}

	fitted, err := exp.Finalize(tuned)
	if err != nil {
		return nil, err
	}
	art, err := artifact.New(table.Schema, fitted, artifact.Meta{
		Seed:        cfg.Seed,
		Rows:        table.Len(),
		Leaderboard: board,
		Tuned:       tuned,
		Holdout:     holdout,
	})
	if err != nil {
		return nil, err
	}
	if err := artifact.Save(opts.ModelPath, art); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}
	log.Infof("saved %s (%s, run %s)", opts.ModelPath, art.EstimatorName(), art.RunID)

	result := &Result{
		Artifact:    art,
		ModelPath:   opts.ModelPath,
		Summary:     summary,
		Leaderboard: board,
		Tuned:       tuned,
		Holdout:     holdout,
	}

	if opts.ReportPath != "" {
		err := report.Save(opts.ReportPath, report.Input{
			RunID:       art.RunID,
			Target:      target,
			Leaderboard: board,
			Tuned:       tuned,
			Holdout:     holdout,
			Summary:     summary,
		}, func(evt report.ProgressEvent) {
			sendProgress(progressChan, ProgressEvent{
				Type:    EventStage,
				Message: "report " + evt.Stage,
				Data:    evt,
			})
		})
		if err != nil {
			log.Errorf("report not written: %v", err)
		} else {
			result.ReportPath = opts.ReportPath
		}
	}

	result.Duration = time.Since(startTime)
	return result, nil
}

func logSummary(s dataset.Summary) {
	log.Infof("dataset: %d rows x %d columns, %d missing cells", s.Rows, len(s.Columns), s.MissingTotal())
	for _, c := range s.Columns {
		log.Infof("  %-24s %-11s distinct=%d missing=%d", c.Name, c.Kind, c.Distinct, c.Missing)
	}
	for i, row := range s.Preview {
		log.Debugf("  row %d: %v", i+1, row)
	}
}

func sendProgress(progressChan chan ProgressEvent, evt ProgressEvent) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	progressChan <- evt
}
