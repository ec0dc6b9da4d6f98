// Package artifact reads and writes the model file: one gzip-compressed
// JSON document holding the schema, the fitted preprocessing pipeline and
// the fitted estimator, tagged with a format version.
package artifact

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"smesales/internal/ml/automl"
	"smesales/internal/ml/estimator"
	"smesales/internal/ml/metrics"
	"smesales/internal/ml/preprocess"
	"smesales/internal/model"
)

const (
	Format        = "sme-sales-model"
	FormatVersion = 1
	Extension     = ".json.gz"
)

var (
	ErrNotFound     = errors.New("model artifact not found")
	ErrIncompatible = errors.New("model artifact is incompatible with this build")
)

// Artifact is the saved model plus the facts about how it was trained.
type Artifact struct {
	Format        string    `json:"format"`
	FormatVersion int       `json:"formatVersion"`
	RunID         string    `json:"runId"`
	CreatedAt     time.Time `json:"createdAt"`
	Task          string    `json:"task"`
	Seed          int64     `json:"seed"`
	Rows          int       `json:"rows"`

	Schema    model.Schema         `json:"schema"`
	Pipeline  *preprocess.Pipeline `json:"pipeline"`
	Estimator estimator.Envelope   `json:"estimator"`

	Leaderboard []automl.Result `json:"leaderboard"`
	Tuned       automl.Result   `json:"tuned"`
	Holdout     *metrics.Scores `json:"holdout,omitempty"`
}

// Meta is the training context recorded next to the model.
type Meta struct {
	Seed        int64
	Rows        int
	Leaderboard []automl.Result
	Tuned       automl.Result
	Holdout     *metrics.Scores
}

// New packages a finalized model. Every call gets a fresh run id.
func New(schema model.Schema, fitted *automl.Fitted, meta Meta) (*Artifact, error) {
	if fitted == nil || fitted.Pipeline == nil || fitted.Regressor == nil {
		return nil, errors.New("artifact: model is not fitted")
	}
	env, err := estimator.Marshal(fitted.Regressor)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Format:        Format,
		FormatVersion: FormatVersion,
		RunID:         uuid.New().String(),
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
		Task:          string(automl.TaskRegression),
		Seed:          meta.Seed,
		Rows:          meta.Rows,
		Schema:        schema,
		Pipeline:      fitted.Pipeline,
		Estimator:     env,
		Leaderboard:   meta.Leaderboard,
		Tuned:         meta.Tuned,
		Holdout:       meta.Holdout,
	}, nil
}

// Model rebuilds the inference pipeline.
func (a *Artifact) Model() (*automl.Fitted, error) {
	if a.Pipeline == nil {
		return nil, fmt.Errorf("%w: no preprocessing pipeline", ErrIncompatible)
	}
	reg, err := estimator.Unmarshal(a.Estimator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatible, err)
	}
	return &automl.Fitted{Pipeline: a.Pipeline, Regressor: reg}, nil
}

// EstimatorName is the display name of the saved estimator family.
func (a *Artifact) EstimatorName() string {
	if f, err := estimator.Lookup(a.Estimator.Kind); err == nil {
		return f.Name
	}
	return a.Estimator.Kind
}

func (a *Artifact) check() error {
	if a.Format != Format {
		return fmt.Errorf("%w: format %q, want %q", ErrIncompatible, a.Format, Format)
	}
	if a.FormatVersion != FormatVersion {
		return fmt.Errorf("%w: format version %d, this build reads %d (re-run training)",
			ErrIncompatible, a.FormatVersion, FormatVersion)
	}
	if a.Task != string(automl.TaskRegression) {
		return fmt.Errorf("%w: task %q", ErrIncompatible, a.Task)
	}
	if len(a.Schema.Features) == 0 {
		return fmt.Errorf("%w: empty schema", ErrIncompatible)
	}
	return nil
}
