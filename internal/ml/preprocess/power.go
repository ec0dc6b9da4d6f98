package preprocess

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// lambda grid searched when fitting a Yeo-Johnson transform
const (
	lambdaMin  = -2.0
	lambdaMax  = 2.0
	lambdaStep = 0.05
)

// yeoJohnson applies the Yeo-Johnson power transform, which is defined for
// negative values unlike Box-Cox.
func yeoJohnson(y, lambda float64) float64 {
	const eps = 1e-9
	if y >= 0 {
		if math.Abs(lambda) < eps {
			return math.Log1p(y)
		}
		return (math.Pow(y+1, lambda) - 1) / lambda
	}
	if math.Abs(lambda-2) < eps {
		return -math.Log1p(-y)
	}
	return -(math.Pow(1-y, 2-lambda) - 1) / (2 - lambda)
}

// fitLambda picks the lambda maximising the Gaussian log-likelihood of the
// transformed column.
func fitLambda(values []float64) float64 {
	var jacobian float64
	for _, y := range values {
		if y >= 0 {
			jacobian += math.Log1p(y)
		} else {
			jacobian -= math.Log1p(-y)
		}
	}

	n := float64(len(values))
	best, bestLL := 1.0, math.Inf(-1)
	buf := make([]float64, len(values))
	steps := int(math.Round((lambdaMax - lambdaMin) / lambdaStep))
	for k := 0; k <= steps; k++ {
		lambda := lambdaMin + float64(k)*lambdaStep
		for i, y := range values {
			buf[i] = yeoJohnson(y, lambda)
		}
		_, variance := stat.PopMeanVariance(buf, nil)
		if variance <= 0 || math.IsNaN(variance) || math.IsInf(variance, 0) {
			continue
		}
		ll := -n/2*math.Log(variance) + (lambda-1)*jacobian
		if ll > bestLL {
			best, bestLL = lambda, ll
		}
	}
	return best
}
