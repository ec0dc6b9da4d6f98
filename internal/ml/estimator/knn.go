package estimator

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// KNN averages the targets of the k nearest training rows (Euclidean).
// With distance weighting, closer rows count more and an exact match wins.
type KNN struct {
	Rows    [][]float64 `json:"rows"`
	Targets []float64   `json:"targets"`

	k        int
	distance bool
}

func init() {
	register(Family{
		Kind:     "knn",
		Name:     "K Neighbors Regressor",
		Defaults: Params{"k": 5, "distance_weights": 0},
		Space: []Dimension{
			{Name: "k", Values: []float64{1, 2, 3, 4, 5, 7, 9, 11, 15, 21, 31}},
			{Name: "distance_weights", Values: []float64{0, 1}},
		},
		build: func(p Params, _ int64) Regressor {
			return &KNN{k: p.Int("k"), distance: p["distance_weights"] != 0}
		},
	})
}

func (k *KNN) Kind() string { return "knn" }

func (k *KNN) Params() Params {
	w := 0.0
	if k.distance {
		w = 1
	}
	return Params{"k": float64(k.k), "distance_weights": w}
}

func (k *KNN) Fit(x *mat.Dense, y []float64) error {
	if err := checkShape(x, y); err != nil {
		return err
	}
	r, _ := x.Dims()
	k.Rows = make([][]float64, r)
	for i := range k.Rows {
		k.Rows[i] = append([]float64(nil), x.RawRowView(i)...)
	}
	k.Targets = append([]float64(nil), y...)
	return nil
}

type neighbour struct {
	dist float64
	idx  int
}

func (k *KNN) Predict(x *mat.Dense) []float64 {
	r, _ := x.Dims()
	out := make([]float64, r)
	n := k.k
	if n < 1 {
		n = 1
	}
	if n > len(k.Rows) {
		n = len(k.Rows)
	}

	nb := make([]neighbour, len(k.Rows))
	for i := range out {
		q := x.RawRowView(i)
		for j, row := range k.Rows {
			nb[j] = neighbour{dist: floats.Distance(q, row, 2), idx: j}
		}
		sort.Slice(nb, func(a, b int) bool {
			if nb[a].dist == nb[b].dist {
				return nb[a].idx < nb[b].idx
			}
			return nb[a].dist < nb[b].dist
		})
		out[i] = k.vote(nb[:n])
	}
	return out
}

func (k *KNN) vote(nb []neighbour) float64 {
	if !k.distance {
		sum := 0.0
		for _, v := range nb {
			sum += k.Targets[v.idx]
		}
		return sum / float64(len(nb))
	}

	if nb[0].dist == 0 {
		sum, cnt := 0.0, 0
		for _, v := range nb {
			if v.dist == 0 {
				sum += k.Targets[v.idx]
				cnt++
			}
		}
		return sum / float64(cnt)
	}
	var num, den float64
	for _, v := range nb {
		w := 1 / v.dist
		num += w * k.Targets[v.idx]
		den += w
	}
	return num / den
}
