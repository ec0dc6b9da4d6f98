package estimator

import (
	"math/rand"
	"runtime"

	"gonum.org/v1/gonum/mat"

	"smesales/internal/parallel"
)

// RandomForest averages trees grown on bootstrap samples with a random
// feature subset tried at each split.
type RandomForest struct {
	Trees []Tree `json:"trees"`

	n         int
	bootstrap bool
	cfg       treeConfig
	seed      int64
}

func init() {
	register(Family{
		Kind: "rf",
		Name: "Random Forest Regressor",
		Defaults: Params{
			"n_estimators": 100, "max_depth": 0, "min_samples_leaf": 1,
			"max_features": 1, "bootstrap": 1,
		},
		Space: []Dimension{
			{Name: "n_estimators", Values: []float64{20, 50, 100, 150}},
			{Name: "max_depth", Values: []float64{4, 6, 8, 10, 12, 0}},
			{Name: "min_samples_leaf", Values: []float64{1, 2, 3, 4, 5}},
			{Name: "max_features", Values: []float64{0.3, 0.5, 0.7, 1}},
			{Name: "bootstrap", Values: []float64{0, 1}},
		},
		build: func(p Params, seed int64) Regressor {
			return &RandomForest{
				n:         p.Int("n_estimators"),
				bootstrap: p["bootstrap"] != 0,
				cfg: treeConfig{
					maxDepth:    p.Int("max_depth"),
					minLeaf:     p.Int("min_samples_leaf"),
					maxFeatures: p["max_features"],
				},
				seed: seed,
			}
		},
	})
}

func (f *RandomForest) Kind() string { return "rf" }
func (f *RandomForest) Seed() int64  { return f.seed }

func (f *RandomForest) Params() Params {
	b := 0.0
	if f.bootstrap {
		b = 1
	}
	return Params{
		"n_estimators":     float64(f.n),
		"max_depth":        float64(f.cfg.maxDepth),
		"min_samples_leaf": float64(f.cfg.minLeaf),
		"max_features":     f.cfg.maxFeatures,
		"bootstrap":        b,
	}
}

func (f *RandomForest) Fit(x *mat.Dense, y []float64) error {
	if err := checkShape(x, y); err != nil {
		return err
	}
	n := f.n
	if n < 1 {
		n = 1
	}

	// seeds are drawn up front so the result does not depend on scheduling
	rng := rand.New(rand.NewSource(f.seed))
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	f.Trees = make([]Tree, n)
	parallel.ForEach(n, runtime.GOMAXPROCS(0), func(i int) {
		trng := rand.New(rand.NewSource(seeds[i]))
		rows := seq(len(y))
		if f.bootstrap {
			for k := range rows {
				rows[k] = trng.Intn(len(y))
			}
		}
		f.Trees[i] = growTree(x, y, rows, f.cfg, trng)
	})
	return nil
}

func (f *RandomForest) Predict(x *mat.Dense) []float64 {
	r, _ := x.Dims()
	out := make([]float64, r)
	for i := range out {
		row := x.RawRowView(i)
		sum := 0.0
		for _, t := range f.Trees {
			sum += t.predictRow(row)
		}
		out[i] = sum / float64(len(f.Trees))
	}
	return out
}
