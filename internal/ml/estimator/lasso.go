package estimator

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Lasso is L1-penalised least squares fitted by cyclic coordinate descent
// on centred data, minimising (1/2n)·||y - Xw||² + alpha·||w||₁.
type Lasso struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`

	alpha   float64
	maxIter int
}

const lassoTol = 1e-6

func init() {
	register(Family{
		Kind:     "lasso",
		Name:     "Lasso Regression",
		Defaults: Params{"alpha": 1, "max_iter": 1000},
		Space: []Dimension{
			{Name: "alpha", Values: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 20, 50}},
		},
		build: func(p Params, _ int64) Regressor {
			return &Lasso{alpha: p["alpha"], maxIter: p.Int("max_iter")}
		},
	})
}

func (l *Lasso) Kind() string { return "lasso" }

func (l *Lasso) Params() Params {
	return Params{"alpha": l.alpha, "max_iter": float64(l.maxIter)}
}

func (l *Lasso) Fit(x *mat.Dense, y []float64) error {
	if err := checkShape(x, y); err != nil {
		return err
	}
	xc, means, yMean := center(x, y)
	r, c := xc.Dims()
	n := float64(r)

	cols := make([][]float64, c)
	norms := make([]float64, c)
	for j := 0; j < c; j++ {
		cols[j] = mat.Col(nil, j, xc)
		norms[j] = floats.Dot(cols[j], cols[j]) / n
	}

	resid := make([]float64, r)
	for i, v := range y {
		resid[i] = v - yMean
	}
	w := make([]float64, c)

	for iter := 0; iter < l.maxIter; iter++ {
		maxDelta := 0.0
		for j := 0; j < c; j++ {
			if norms[j] == 0 {
				continue
			}
			old := w[j]
			// rho = x_jᵀ(resid + x_j·w_j) / n
			rho := floats.Dot(cols[j], resid)/n + norms[j]*old
			w[j] = softThreshold(rho, l.alpha) / norms[j]
			if d := w[j] - old; d != 0 {
				floats.AddScaled(resid, -d, cols[j])
				maxDelta = math.Max(maxDelta, math.Abs(d))
			}
		}
		if maxDelta < lassoTol {
			break
		}
	}

	l.Coef = w
	l.Intercept = yMean - floats.Dot(w, means)
	return nil
}

func (l *Lasso) Predict(x *mat.Dense) []float64 {
	r, _ := x.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = l.Intercept + floats.Dot(x.RawRowView(i), l.Coef)
	}
	return out
}

func softThreshold(v, t float64) float64 {
	switch {
	case v > t:
		return v - t
	case v < -t:
		return v + t
	}
	return 0
}
