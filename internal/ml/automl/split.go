package automl

import (
	"math"
	"math/rand"
)

// Fold is one cross-validation split, as row indices into the training set.
type Fold struct {
	Train []int
	Valid []int
}

// splitHoldout shuffles 0..n-1 and cuts off the holdout share. At least
// one row goes to each side when n >= 2.
func splitHoldout(n int, trainSize float64, rng *rand.Rand) (train, holdout []int) {
	perm := rng.Perm(n)
	if n < 2 || trainSize >= 1 {
		return perm, nil
	}
	cut := int(math.Round(float64(n) * trainSize))
	if cut < 1 {
		cut = 1
	}
	if cut > n-1 {
		cut = n - 1
	}
	return perm[:cut], perm[cut:]
}

// kFold partitions 0..n-1 into k shuffled folds of near-equal size.
func kFold(n, k int, rng *rand.Rand) []Fold {
	if k > n {
		k = n
	}
	perm := rng.Perm(n)
	folds := make([]Fold, k)
	start := 0
	for f := 0; f < k; f++ {
		size := n / k
		if f < n%k {
			size++
		}
		valid := perm[start : start+size]
		train := make([]int, 0, n-size)
		train = append(train, perm[:start]...)
		train = append(train, perm[start+size:]...)
		folds[f] = Fold{Train: train, Valid: append([]int(nil), valid...)}
		start += size
	}
	return folds
}
