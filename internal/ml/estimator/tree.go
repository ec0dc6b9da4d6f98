package estimator

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Node is one CART node. Leaves have Feature == -1.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Value     float64 `json:"v"`
}

// Tree is a fitted regression tree stored as a flat node list; Nodes[0]
// is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// predictRow walks the tree for one encoded row.
func (t Tree) predictRow(row []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

type treeConfig struct {
	maxDepth    int     // <= 0: unlimited
	minSplit    int     // fewest rows a node needs to be split
	minLeaf     int     // fewest rows per child
	maxFeatures float64 // fraction of features tried per split, <= 0 or >= 1: all
}

type treeBuilder struct {
	x     *mat.Dense
	y     []float64
	cfg   treeConfig
	rng   *rand.Rand
	nodes []Node
	cols  int
}

// growTree fits a regression tree on the given row indices (duplicates
// allowed, for bootstrap samples).
func growTree(x *mat.Dense, y []float64, rows []int, cfg treeConfig, rng *rand.Rand) Tree {
	if cfg.minLeaf < 1 {
		cfg.minLeaf = 1
	}
	if cfg.minSplit < 2 {
		cfg.minSplit = 2
	}
	_, c := x.Dims()
	b := &treeBuilder{x: x, y: y, cfg: cfg, rng: rng, cols: c}
	b.build(rows, 0)
	return Tree{Nodes: b.nodes}
}

func (b *treeBuilder) build(rows []int, depth int) int {
	idx := len(b.nodes)
	sum := 0.0
	for _, r := range rows {
		sum += b.y[r]
	}
	b.nodes = append(b.nodes, Node{Feature: -1, Value: sum / float64(len(rows))})

	if b.cfg.maxDepth > 0 && depth >= b.cfg.maxDepth {
		return idx
	}
	if len(rows) < b.cfg.minSplit || len(rows) < 2*b.cfg.minLeaf {
		return idx
	}

	feature, threshold, ok := b.bestSplit(rows, sum)
	if !ok {
		return idx
	}

	var left, right []int
	for _, r := range rows {
		if b.x.At(r, feature) <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	l := b.build(left, depth+1)
	rr := b.build(right, depth+1)
	b.nodes[idx] = Node{Feature: feature, Threshold: threshold, Left: l, Right: rr, Value: b.nodes[idx].Value}
	return idx
}

func (b *treeBuilder) candidateFeatures() []int {
	frac := b.cfg.maxFeatures
	if frac <= 0 || frac >= 1 || b.rng == nil {
		all := make([]int, b.cols)
		for j := range all {
			all[j] = j
		}
		return all
	}
	m := int(math.Max(1, math.Round(frac*float64(b.cols))))
	return b.rng.Perm(b.cols)[:m]
}

// bestSplit maximises sumL²/nL + sumR²/nR, which is equivalent to
// minimising the children's squared error.
func (b *treeBuilder) bestSplit(rows []int, total float64) (int, float64, bool) {
	n := len(rows)
	parent := total * total / float64(n)
	bestScore := parent + 1e-9*math.Max(1, math.Abs(parent))
	bestFeature, bestThreshold, found := -1, 0.0, false

	sorted := make([]int, n)
	for _, j := range b.candidateFeatures() {
		copy(sorted, rows)
		sort.Slice(sorted, func(a, c int) bool { return b.x.At(sorted[a], j) < b.x.At(sorted[c], j) })

		leftSum := 0.0
		for i := 1; i < n; i++ {
			leftSum += b.y[sorted[i-1]]
			if i < b.cfg.minLeaf || n-i < b.cfg.minLeaf {
				continue
			}
			lo, hi := b.x.At(sorted[i-1], j), b.x.At(sorted[i], j)
			if lo == hi {
				continue
			}
			rightSum := total - leftSum
			score := leftSum*leftSum/float64(i) + rightSum*rightSum/float64(n-i)
			if score > bestScore {
				bestScore, bestFeature, bestThreshold, found = score, j, (lo+hi)/2, true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

// DecisionTree is a single CART regressor.
type DecisionTree struct {
	Tree Tree `json:"tree"`

	cfg  treeConfig
	seed int64
}

func init() {
	register(Family{
		Kind:     "dt",
		Name:     "Decision Tree Regressor",
		Defaults: Params{"max_depth": 0, "min_samples_split": 2, "min_samples_leaf": 1},
		Space: []Dimension{
			{Name: "max_depth", Values: []float64{2, 3, 4, 5, 6, 8, 10, 12, 16}},
			{Name: "min_samples_split", Values: []float64{2, 5, 10}},
			{Name: "min_samples_leaf", Values: []float64{1, 2, 3, 4, 5, 6}},
		},
		build: func(p Params, seed int64) Regressor {
			return &DecisionTree{cfg: treeConfig{
				maxDepth: p.Int("max_depth"),
				minSplit: p.Int("min_samples_split"),
				minLeaf:  p.Int("min_samples_leaf"),
			}, seed: seed}
		},
	})
}

func (d *DecisionTree) Kind() string { return "dt" }
func (d *DecisionTree) Seed() int64  { return d.seed }

func (d *DecisionTree) Params() Params {
	return Params{
		"max_depth":         float64(d.cfg.maxDepth),
		"min_samples_split": float64(d.cfg.minSplit),
		"min_samples_leaf":  float64(d.cfg.minLeaf),
	}
}

func (d *DecisionTree) Fit(x *mat.Dense, y []float64) error {
	if err := checkShape(x, y); err != nil {
		return err
	}
	d.Tree = growTree(x, y, seq(len(y)), d.cfg, rand.New(rand.NewSource(d.seed)))
	return nil
}

func (d *DecisionTree) Predict(x *mat.Dense) []float64 {
	r, _ := x.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = d.Tree.predictRow(x.RawRowView(i))
	}
	return out
}

func seq(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
