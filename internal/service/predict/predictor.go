// Package predict serves single-record predictions from a loaded model
// artifact. A Predictor never changes after construction, so handlers can
// share it without locking.
package predict

import (
	"time"

	"github.com/google/uuid"

	"smesales/internal/artifact"
	"smesales/internal/ml/automl"
	"smesales/internal/model"
)

// Predictor model wrapper
type Predictor struct {
	artifact *artifact.Artifact
	model    *automl.Fitted
}

// Prediction is one inference result.
type Prediction struct {
	ID        string    `json:"id"`
	Value     float64   `json:"prediction"`
	Formatted string    `json:"formatted"`
	Tier      Tier      `json:"tier"`
	InRange   bool      `json:"inRange"` // within the target range seen in training
	Insights  *Insights `json:"insights,omitempty"`
	At        time.Time `json:"at"`
}

// New wraps an already loaded artifact.
func New(a *artifact.Artifact) (*Predictor, error) {
	m, err := a.Model()
	if err != nil {
		return nil, err
	}
	return &Predictor{artifact: a, model: m}, nil
}

// Load reads the artifact at path. Errors wrap artifact.ErrNotFound or
// artifact.ErrIncompatible.
func Load(path string) (*Predictor, error) {
	a, err := artifact.Load(path)
	if err != nil {
		return nil, err
	}
	return New(a)
}

// Schema is the input layout the form must follow.
func (p *Predictor) Schema() model.Schema {
	return p.artifact.Schema
}

func (p *Predictor) Artifact() *artifact.Artifact {
	return p.artifact
}

// Predict validates raw field values and predicts monthly sales. Invalid
// input returns model.ValidationErrors and never reaches the model.
func (p *Predictor) Predict(raw map[string]string) (Prediction, error) {
	rec, err := p.artifact.Schema.Parse(raw)
	if err != nil {
		return Prediction{}, err
	}
	return p.PredictRecord(rec)
}

// PredictRecord predicts an already validated record.
func (p *Predictor) PredictRecord(rec model.Record) (Prediction, error) {
	v, err := p.model.Predict(rec)
	if err != nil {
		return Prediction{}, err
	}
	s := p.artifact.Schema
	pred := Prediction{
		ID:        uuid.New().String(),
		Value:     v,
		Formatted: FormatNaira(v),
		Tier:      SalesTier(v),
		InRange:   v >= s.TargetMin && v <= s.TargetMax,
		At:        time.Now(),
	}

	// only for models trained with both amounts
	inventory, okInv := rec.Nums[model.ColInventoryValue]
	marketing, okMkt := rec.Nums[model.ColMarketingSpend]
	if okInv && okMkt {
		in := ComputeInsights(v, inventory, marketing)
		pred.Insights = &in
	}
	return pred, nil
}

// Defaults returns the initial form values: the first option of each
// categorical and the default of each numeric field.
func (p *Predictor) Defaults() map[string]string {
	out := make(map[string]string, len(p.artifact.Schema.Features))
	for _, f := range p.artifact.Schema.Features {
		if f.Kind == model.KindCategorical {
			if len(f.Options) > 0 {
				out[f.Name] = f.Options[0]
			}
			continue
		}
		out[f.Name] = model.FormatNumber(f.Default)
	}
	return out
}
