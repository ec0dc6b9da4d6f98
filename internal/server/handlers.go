package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"smesales/internal/ml/estimator"
	"smesales/internal/ml/metrics"
	"smesales/internal/model"
	"smesales/internal/service/predict"
)

type field struct {
	Meta  model.FeatureMeta
	Value string
	Error string
}

func (f field) Numeric() bool {
	return f.Meta.Kind.IsNumeric()
}

type page struct {
	Title      string
	Estimator  string
	RunID      string
	Fields     []field
	Prediction *predict.Prediction
	Failure    string
}

func (s *Server) render(values map[string]string, fieldErrors map[string]string) page {
	a := s.predictor.Artifact()
	p := page{
		Title:     s.title,
		Estimator: a.EstimatorName(),
		RunID:     a.RunID,
	}
	for _, meta := range s.predictor.Schema().Features {
		p.Fields = append(p.Fields, field{
			Meta:  meta,
			Value: values[meta.Name],
			Error: fieldErrors[meta.Name],
		})
	}
	return p
}

func (s *Server) index(c *gin.Context) {
	p := s.render(s.predictor.Defaults(), nil)
	c.HTML(http.StatusOK, "index.gohtml", p)
}

func (s *Server) predictForm(c *gin.Context) {
	values := make(map[string]string)
	for _, meta := range s.predictor.Schema().Features {
		if v, ok := c.GetPostForm(meta.Name); ok {
			values[meta.Name] = v
		}
	}

	pred, err := s.predictor.Predict(values)
	if err != nil {
		var verrs model.ValidationErrors
		if errors.As(err, &verrs) {
			p := s.render(values, verrs.ByField())
			c.HTML(http.StatusUnprocessableEntity, "index.gohtml", p)
			return
		}
		log.Errorf("predict: %v", err)
		p := s.render(values, nil)
		p.Failure = "The model could not produce a prediction for this input."
		c.HTML(http.StatusInternalServerError, "index.gohtml", p)
		return
	}

	p := s.render(values, nil)
	p.Prediction = &pred
	c.HTML(http.StatusOK, "index.gohtml", p)
}

type modelResponse struct {
	RunID     string           `json:"runId"`
	CreatedAt string           `json:"createdAt"`
	Kind      string           `json:"kind"`
	Estimator string           `json:"estimator"`
	Params    estimator.Params `json:"params"`
	Rows      int              `json:"rows"`
	Holdout   *metrics.Scores  `json:"holdout,omitempty"`
	Schema    model.Schema     `json:"schema"`
}

func (s *Server) modelInfo(c *gin.Context) {
	a := s.predictor.Artifact()
	c.JSON(http.StatusOK, modelResponse{
		RunID:     a.RunID,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
		Kind:      a.Estimator.Kind,
		Estimator: a.EstimatorName(),
		Params:    a.Estimator.Params,
		Rows:      a.Rows,
		Holdout:   a.Holdout,
		Schema:    a.Schema,
	})
}

func (s *Server) predictJSON(c *gin.Context) {
	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}

	values := make(map[string]string, len(req))
	for k, v := range req {
		values[k] = jsonValue(v)
	}

	pred, err := s.predictor.Predict(values)
	if err != nil {
		var verrs model.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verrs})
			return
		}
		log.Errorf("predict: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		return
	}
	c.JSON(http.StatusOK, pred)
}

// jsonValue turns a decoded JSON scalar back into the text form the
// schema parser expects.
func jsonValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
