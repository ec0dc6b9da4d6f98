// Package preprocess turns typed records into the numeric matrix the
// estimators consume. A fitted Pipeline is plain data and serialises with
// the model artifact, so serving needs no feature code of its own.
package preprocess

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"smesales/internal/model"
)

// Options toggles the numeric transforms.
type Options struct {
	Normalize      bool `json:"normalize"`
	Transformation bool `json:"transformation"`
}

// NumericStep is the fitted state for one numeric column.
type NumericStep struct {
	Name   string  `json:"name"`
	Lambda float64 `json:"lambda,omitempty"` // Yeo-Johnson, only with Transformation
	Mean   float64 `json:"mean,omitempty"`   // z-score, only with Normalize
	Std    float64 `json:"std,omitempty"`
}

// OneHotStep is the fitted state for one categorical column.
type OneHotStep struct {
	Name   string   `json:"name"`
	Levels []string `json:"levels"`
	// Fallback is the training mode; unseen values encode as this level.
	Fallback string `json:"fallback"`
}

// Pipeline is a fitted preprocessing pipeline.
type Pipeline struct {
	Options     Options       `json:"options"`
	Numeric     []NumericStep `json:"numeric"`
	Categorical []OneHotStep  `json:"categorical"`
}

// Fit learns the transform state from the training table.
func Fit(t *model.Table, opts Options) (*Pipeline, error) {
	if t.Len() == 0 {
		return nil, errors.New("preprocess: empty table")
	}

	p := &Pipeline{Options: opts}
	for _, f := range t.Schema.Features {
		if f.Kind == model.KindCategorical {
			p.Categorical = append(p.Categorical, fitOneHot(f.Name, t.Cats[f.Name]))
			continue
		}
		p.Numeric = append(p.Numeric, fitNumeric(f.Name, t.Nums[f.Name], opts))
	}
	return p, nil
}

func fitNumeric(name string, values []float64, opts Options) NumericStep {
	step := NumericStep{Name: name}
	work := values
	if opts.Transformation {
		step.Lambda = fitLambda(values)
		work = make([]float64, len(values))
		for i, v := range values {
			work[i] = yeoJohnson(v, step.Lambda)
		}
	}
	if opts.Normalize {
		mean, variance := stat.PopMeanVariance(work, nil)
		step.Mean = mean
		step.Std = math.Sqrt(variance)
		if step.Std == 0 || math.IsNaN(step.Std) {
			step.Std = 1
		}
	}
	return step
}

func fitOneHot(name string, values []string) OneHotStep {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	levels := make([]string, 0, len(counts))
	for v := range counts {
		levels = append(levels, v)
	}
	sort.Strings(levels)

	// ties resolve to the alphabetically first level
	fallback := ""
	for _, v := range levels {
		if fallback == "" || counts[v] > counts[fallback] {
			fallback = v
		}
	}
	return OneHotStep{Name: name, Levels: levels, Fallback: fallback}
}

// Width is the number of output columns.
func (p *Pipeline) Width() int {
	w := len(p.Numeric)
	for _, c := range p.Categorical {
		w += len(c.Levels)
	}
	return w
}

// OutputNames labels the output columns, e.g. "state=Lagos".
func (p *Pipeline) OutputNames() []string {
	names := make([]string, 0, p.Width())
	for _, n := range p.Numeric {
		names = append(names, n.Name)
	}
	for _, c := range p.Categorical {
		for _, l := range c.Levels {
			names = append(names, c.Name+"="+l)
		}
	}
	return names
}

func (s NumericStep) apply(v float64, opts Options) float64 {
	if opts.Transformation {
		v = yeoJohnson(v, s.Lambda)
	}
	if opts.Normalize {
		v = (v - s.Mean) / s.Std
	}
	return v
}

// index returns the level position of v, or of the fallback when v was
// never seen during fitting.
func (s OneHotStep) index(v string) int {
	i := sort.SearchStrings(s.Levels, v)
	if i < len(s.Levels) && s.Levels[i] == v {
		return i
	}
	return sort.SearchStrings(s.Levels, s.Fallback)
}

// TransformRecord encodes one record into dst, which must have Width()
// elements. Missing numeric values are an error; unseen categories are not.
func (p *Pipeline) TransformRecord(rec model.Record, dst []float64) error {
	if len(dst) != p.Width() {
		return fmt.Errorf("preprocess: dst has %d columns, want %d", len(dst), p.Width())
	}
	for i := range dst {
		dst[i] = 0
	}

	col := 0
	for _, n := range p.Numeric {
		v, ok := rec.Nums[n.Name]
		if !ok {
			return fmt.Errorf("preprocess: missing numeric feature %q", n.Name)
		}
		dst[col] = n.apply(v, p.Options)
		col++
	}
	for _, c := range p.Categorical {
		dst[col+c.index(rec.Cats[c.Name])] = 1
		col += len(c.Levels)
	}
	return nil
}

// Transform encodes every row of t.
func (p *Pipeline) Transform(t *model.Table) (*mat.Dense, error) {
	if t.Len() == 0 {
		return nil, errors.New("preprocess: empty table")
	}
	x := mat.NewDense(t.Len(), p.Width(), nil)
	for i := 0; i < t.Len(); i++ {
		if err := p.TransformRecord(t.Row(i), x.RawRowView(i)); err != nil {
			return nil, err
		}
	}
	return x, nil
}
