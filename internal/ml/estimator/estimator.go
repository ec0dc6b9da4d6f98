// Package estimator holds the candidate regression families the AutoML
// experiment compares. Every fitted estimator is plain exported data so it
// can be written into the model artifact and rebuilt on load.
package estimator

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Params are hyperparameters keyed by name. Integer-valued parameters are
// stored as floats and truncated by the family that reads them.
type Params map[string]float64

// Clone copies p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Int reads an integer parameter.
func (p Params) Int(name string) int {
	return int(p[name])
}

// Regressor is a fitted or unfitted regression model over encoded rows.
type Regressor interface {
	Kind() string
	Params() Params
	Fit(x *mat.Dense, y []float64) error
	Predict(x *mat.Dense) []float64
}

// Dimension is one tunable hyperparameter and its candidate values.
type Dimension struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Family is a model family in the candidate catalog.
type Family struct {
	Kind     string
	Name     string
	Defaults Params
	Space    []Dimension
	build    func(p Params, seed int64) Regressor
}

// New builds an unfitted regressor. Missing params fall back to defaults.
func (f Family) New(p Params, seed int64) Regressor {
	merged := f.Defaults.Clone()
	for k, v := range p {
		merged[k] = v
	}
	return f.build(merged, seed)
}

// Sample draws one random point of the search space.
func (f Family) Sample(rng *rand.Rand) Params {
	p := f.Defaults.Clone()
	for _, d := range f.Space {
		p[d.Name] = d.Values[rng.Intn(len(d.Values))]
	}
	return p
}

var families = map[string]Family{}

func register(f Family) {
	families[f.Kind] = f
}

// Lookup family by kind
func Lookup(kind string) (Family, error) {
	f, ok := families[kind]
	if !ok {
		return Family{}, fmt.Errorf("estimator: unknown kind %q", kind)
	}
	return f, nil
}

// Catalog lists the candidate families in a stable order.
func Catalog() []Family {
	out := make([]Family, 0, len(families))
	for _, f := range families {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Envelope is the serialised form of a fitted regressor.
type Envelope struct {
	Kind   string          `json:"kind"`
	Params Params          `json:"params"`
	Seed   int64           `json:"seed"`
	State  json.RawMessage `json:"state"`
}

// Seeded is implemented by regressors that consume randomness.
type Seeded interface {
	Seed() int64
}

// Marshal wraps a fitted regressor into an envelope.
func Marshal(r Regressor) (Envelope, error) {
	state, err := json.Marshal(r)
	if err != nil {
		return Envelope{}, fmt.Errorf("estimator: marshal %s: %w", r.Kind(), err)
	}
	env := Envelope{Kind: r.Kind(), Params: r.Params(), State: state}
	if s, ok := r.(Seeded); ok {
		env.Seed = s.Seed()
	}
	return env, nil
}

// Unmarshal rebuilds a fitted regressor from its envelope.
func Unmarshal(env Envelope) (Regressor, error) {
	f, err := Lookup(env.Kind)
	if err != nil {
		return nil, err
	}
	r := f.New(env.Params, env.Seed)
	if err := json.Unmarshal(env.State, r); err != nil {
		return nil, fmt.Errorf("estimator: unmarshal %s: %w", env.Kind, err)
	}
	return r, nil
}

func checkShape(x *mat.Dense, y []float64) error {
	r, _ := x.Dims()
	if r == 0 || r != len(y) {
		return fmt.Errorf("estimator: %d rows vs %d targets", r, len(y))
	}
	return nil
}
