package automl

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"smesales/internal/ml/estimator"
	"smesales/internal/ml/metrics"
)

// TuneModel runs a seeded random search of nIter draws over the family's
// search space on the experiment's folds. The base result is returned
// unchanged when no draw beats it under optimize.
func (e *Experiment) TuneModel(ctx context.Context, base Result, optimize metrics.Metric, nIter int) (Result, error) {
	fam, err := estimator.Lookup(base.Kind)
	if err != nil {
		return Result{}, err
	}
	if len(fam.Space) == 0 || nIter <= 0 {
		log.Infof("tune: %s has nothing to tune", base.Kind)
		return base, nil
	}

	rng := rand.New(rand.NewSource(e.cfg.Seed))
	tried := map[string]bool{paramsKey(base.Params): true}
	best := base

	for i := 0; i < nIter; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		e.progress("tune "+base.Kind, i, nIter)

		params := fam.Sample(rng)
		key := paramsKey(params)
		if tried[key] {
			continue
		}
		tried[key] = true

		res, err := e.CrossValidate(base.Kind, params)
		if err != nil {
			log.Warningf("tune: %s %s failed: %v", base.Kind, key, err)
			continue
		}
		log.Debugf("tune: %s %s %s=%.4f", base.Kind, key, optimize, res.Mean.Get(optimize))
		if optimize.Better(res.Mean.Get(optimize), best.Mean.Get(optimize)) {
			best = res
		}
	}
	e.progress("tune "+base.Kind, nIter, nIter)

	if paramsKey(best.Params) == paramsKey(base.Params) {
		log.Infof("tune: no candidate beat the base %s (%s=%.4f)", base.Kind, optimize, base.Mean.Get(optimize))
	} else {
		log.Infof("tune: %s improved %s %.4f -> %.4f with %s",
			base.Kind, optimize, base.Mean.Get(optimize), best.Mean.Get(optimize), paramsKey(best.Params))
	}
	return best, nil
}

// paramsKey is a stable text form of params, e.g. "alpha=1 k=5".
func paramsKey(p estimator.Params) string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, p[k])
	}
	return strings.Join(parts, " ")
}
