package estimator

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Linear is least squares with an optional L2 penalty (ridge). The
// intercept is fitted separately on centred data and never penalised.
type Linear struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`

	kind  string
	alpha float64
}

// jitter keeps the plain least squares system solvable when one-hot
// columns are collinear.
const jitter = 1e-8

func init() {
	register(Family{
		Kind:     "lr",
		Name:     "Linear Regression",
		Defaults: Params{},
		build:    func(Params, int64) Regressor { return &Linear{kind: "lr"} },
	})
	register(Family{
		Kind:     "ridge",
		Name:     "Ridge Regression",
		Defaults: Params{"alpha": 1},
		Space: []Dimension{
			{Name: "alpha", Values: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 20, 50, 100}},
		},
		build: func(p Params, _ int64) Regressor { return &Linear{kind: "ridge", alpha: p["alpha"]} },
	})
}

func (l *Linear) Kind() string { return l.kind }

func (l *Linear) Params() Params {
	if l.kind == "lr" {
		return Params{}
	}
	return Params{"alpha": l.alpha}
}

func (l *Linear) Fit(x *mat.Dense, y []float64) error {
	if err := checkShape(x, y); err != nil {
		return err
	}
	xc, means, yMean := center(x, y)
	_, c := xc.Dims()

	var gram mat.Dense
	gram.Mul(xc.T(), xc)
	ridge := l.alpha
	if ridge <= 0 {
		ridge = jitter * math.Max(1, mat.Trace(&gram)/float64(c))
	}
	for j := 0; j < c; j++ {
		gram.Set(j, j, gram.At(j, j)+ridge)
	}

	yc := make([]float64, len(y))
	for i, v := range y {
		yc[i] = v - yMean
	}
	var rhs mat.VecDense
	rhs.MulVec(xc.T(), mat.NewVecDense(len(yc), yc))

	var beta mat.VecDense
	if err := beta.SolveVec(&gram, &rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return fmt.Errorf("linear: solve: %w", err)
		}
	}

	l.Coef = make([]float64, c)
	for j := range l.Coef {
		l.Coef[j] = beta.AtVec(j)
	}
	l.Intercept = yMean - floats.Dot(l.Coef, means)
	return nil
}

func (l *Linear) Predict(x *mat.Dense) []float64 {
	r, _ := x.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = l.Intercept + floats.Dot(x.RawRowView(i), l.Coef)
	}
	return out
}

// center returns x with column means removed, those means, and mean(y).
func center(x *mat.Dense, y []float64) (*mat.Dense, []float64, float64) {
	r, c := x.Dims()
	means := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, x)
		means[j] = stat.Mean(col, nil)
	}

	xc := mat.NewDense(r, c, nil)
	xc.Apply(func(i, j int, v float64) float64 { return v - means[j] }, x)
	return xc, means, stat.Mean(y, nil)
}
