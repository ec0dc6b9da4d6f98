package estimator

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// GradientBoosting fits shallow trees to squared-error residuals, each
// shrunk by the learning rate, starting from the target mean.
type GradientBoosting struct {
	Init  float64 `json:"init"`
	Rate  float64 `json:"rate"`
	Trees []Tree  `json:"trees"`

	n         int
	subsample float64
	cfg       treeConfig
	seed      int64
}

func init() {
	register(Family{
		Kind: "gbr",
		Name: "Gradient Boosting Regressor",
		Defaults: Params{
			"n_estimators": 100, "learning_rate": 0.1, "max_depth": 3,
			"min_samples_leaf": 1, "subsample": 1,
		},
		Space: []Dimension{
			{Name: "n_estimators", Values: []float64{50, 100, 150, 200, 300}},
			{Name: "learning_rate", Values: []float64{0.01, 0.03, 0.05, 0.1, 0.2, 0.3}},
			{Name: "max_depth", Values: []float64{1, 2, 3, 4, 5, 6}},
			{Name: "min_samples_leaf", Values: []float64{1, 2, 3, 5, 8}},
			{Name: "subsample", Values: []float64{0.5, 0.7, 0.85, 1}},
		},
		build: func(p Params, seed int64) Regressor {
			return &GradientBoosting{
				Rate:      p["learning_rate"],
				n:         p.Int("n_estimators"),
				subsample: p["subsample"],
				cfg: treeConfig{
					maxDepth: p.Int("max_depth"),
					minLeaf:  p.Int("min_samples_leaf"),
				},
				seed: seed,
			}
		},
	})
}

func (g *GradientBoosting) Kind() string { return "gbr" }
func (g *GradientBoosting) Seed() int64  { return g.seed }

func (g *GradientBoosting) Params() Params {
	return Params{
		"n_estimators":     float64(g.n),
		"learning_rate":    g.Rate,
		"max_depth":        float64(g.cfg.maxDepth),
		"min_samples_leaf": float64(g.cfg.minLeaf),
		"subsample":        g.subsample,
	}
}

func (g *GradientBoosting) Fit(x *mat.Dense, y []float64) error {
	if err := checkShape(x, y); err != nil {
		return err
	}
	rng := rand.New(rand.NewSource(g.seed))
	g.Init = stat.Mean(y, nil)
	g.Trees = g.Trees[:0]

	n := len(y)
	current := make([]float64, n)
	for i := range current {
		current[i] = g.Init
	}
	resid := make([]float64, n)

	size := n
	if g.subsample > 0 && g.subsample < 1 {
		size = int(g.subsample * float64(n))
		if size < 2 {
			size = n
		}
	}

	for k := 0; k < g.n; k++ {
		for i := range resid {
			resid[i] = y[i] - current[i]
		}
		rows := seq(n)
		if size < n {
			rows = rng.Perm(n)[:size]
		}
		t := growTree(x, resid, rows, g.cfg, rng)
		g.Trees = append(g.Trees, t)
		for i := range current {
			current[i] += g.Rate * t.predictRow(x.RawRowView(i))
		}
	}
	return nil
}

func (g *GradientBoosting) Predict(x *mat.Dense) []float64 {
	r, _ := x.Dims()
	out := make([]float64, r)
	for i := range out {
		row := x.RawRowView(i)
		v := g.Init
		for _, t := range g.Trees {
			v += g.Rate * t.predictRow(row)
		}
		out[i] = v
	}
	return out
}
