package model

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Schema is the training-time column layout a model was fitted against.
// The serving form and the inference path both follow it exactly.
type Schema struct {
	Target   string        `json:"target"`
	Features []FeatureMeta `json:"features"`
	// observed target range, used to sanity check predictions
	TargetMin float64 `json:"targetMin"`
	TargetMax float64 `json:"targetMax"`
}

// Feature returns the metadata for name.
func (s Schema) Feature(name string) (FeatureMeta, bool) {
	for _, f := range s.Features {
		if f.Name == name {
			return f, true
		}
	}
	return FeatureMeta{}, false
}

// Names returns the feature column names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Features))
	for i, f := range s.Features {
		names[i] = f.Name
	}
	return names
}

// Record is one parsed, validated row without the target.
type Record struct {
	Cats map[string]string
	Nums map[string]float64
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{Cats: map[string]string{}, Nums: map[string]float64{}}
}

// FieldError is a user-facing validation problem on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every field problem of one submission.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Field + ": " + e.Message
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// ByField indexes the messages by field name for template lookup.
func (v ValidationErrors) ByField() map[string]string {
	m := make(map[string]string, len(v))
	for _, e := range v {
		m[e.Field] = e.Message
	}
	return m
}

// Parse validates raw form values against the schema.
// Numbers must parse and fall within [Min, Max]; integer fields reject
// fractions; categoricals must belong to the vocabulary.
func (s Schema) Parse(raw map[string]string) (Record, error) {
	rec := NewRecord()
	var errs ValidationErrors

	for _, f := range s.Features {
		v := strings.TrimSpace(raw[f.Name])
		if v == "" {
			errs = append(errs, FieldError{Field: f.Name, Message: "is required"})
			continue
		}

		if f.Kind == KindCategorical {
			if !f.HasOption(v) {
				errs = append(errs, FieldError{Field: f.Name, Message: fmt.Sprintf("%q is not a known option", v)})
				continue
			}
			rec.Cats[f.Name] = v
			continue
		}

		n, err := ParseNumber(v)
		if err != nil {
			errs = append(errs, FieldError{Field: f.Name, Message: "must be a number"})
			continue
		}
		if f.Kind == KindInteger && n != math.Trunc(n) {
			errs = append(errs, FieldError{Field: f.Name, Message: "must be a whole number"})
			continue
		}
		if n < f.Min || n > f.Max {
			errs = append(errs, FieldError{
				Field:   f.Name,
				Message: fmt.Sprintf("must be between %s and %s", FormatNumber(f.Min), FormatNumber(f.Max)),
			})
			continue
		}
		rec.Nums[f.Name] = n
	}

	if len(errs) > 0 {
		return Record{}, errs
	}
	return rec, nil
}

// numberPattern accepts plain decimals with an optional exponent, or
// integers grouped by commas in threes ("1,250,000.50").
var numberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?([eE][+-]?\d+)?|\d{1,3}(,\d{3})+(\.\d+)?)$`)

// ParseNumber parses a decimal. Thousands separators must be well placed;
// hex, underscores and stray commas are rejected.
func ParseNumber(v string) (float64, error) {
	v = strings.TrimSpace(v)
	if !numberPattern.MatchString(v) {
		return 0, fmt.Errorf("not a number: %q", v)
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("not a finite number: %s", v)
	}
	return n, nil
}

// FormatNumber prints n without a trailing ".0" for whole values.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
