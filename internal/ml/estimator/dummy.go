package estimator

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Dummy predicts the training mean. It is the floor every other family
// has to beat.
type Dummy struct {
	Mean float64 `json:"mean"`
}

func init() {
	register(Family{
		Kind:     "dummy",
		Name:     "Dummy Regressor",
		Defaults: Params{},
		build:    func(Params, int64) Regressor { return &Dummy{} },
	})
}

func (d *Dummy) Kind() string   { return "dummy" }
func (d *Dummy) Params() Params { return Params{} }

func (d *Dummy) Fit(x *mat.Dense, y []float64) error {
	if err := checkShape(x, y); err != nil {
		return err
	}
	d.Mean = stat.Mean(y, nil)
	return nil
}

func (d *Dummy) Predict(x *mat.Dense) []float64 {
	r, _ := x.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = d.Mean
	}
	return out
}
