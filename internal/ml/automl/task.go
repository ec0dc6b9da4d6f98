package automl

import (
	"errors"
	"fmt"

	"smesales/internal/model"
)

// Task is the learning problem implied by the target column.
type Task string

const (
	TaskRegression     Task = "regression"
	TaskClassification Task = "classification"
)

// classificationCardinality is the distinct-value count at or below which
// a numeric target is treated as class labels.
const classificationCardinality = 10

var ErrNotRegression = errors.New("target is not a regression target")

// DetectTask inspects the raw target cells. Text targets and numeric
// targets with few distinct values look like classification.
func DetectTask(values []string) Task {
	distinct := make(map[float64]struct{})
	for _, v := range values {
		n, err := model.ParseNumber(v)
		if err != nil {
			return TaskClassification
		}
		distinct[n] = struct{}{}
	}
	if len(distinct) <= classificationCardinality {
		return TaskClassification
	}
	return TaskRegression
}

// RequireRegression rejects targets this product cannot learn.
func RequireRegression(target string, values []string) error {
	if task := DetectTask(values); task != TaskRegression {
		return fmt.Errorf("%w: column %q looks like a %s target (text or at most %d distinct values)",
			ErrNotRegression, target, task, classificationCardinality)
	}
	return nil
}
