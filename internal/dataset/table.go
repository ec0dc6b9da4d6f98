package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"smesales/internal/model"
)

// InferSchema derives the training schema from a validated frame.
// Catalog columns keep their documented metadata, with the vocabulary
// widened by any value seen in the data; other columns are typed from
// their cells.
func InferSchema(f *Frame, target string) (model.Schema, error) {
	if f.ColumnIndex(target) < 0 {
		return model.Schema{}, fmt.Errorf("%w: %q", ErrMissingTarget, target)
	}

	schema := model.Schema{Target: target}
	for j, name := range f.Header {
		if name == target {
			continue
		}
		values := make([]string, len(f.Rows))
		for i, row := range f.Rows {
			values[i] = row[j]
		}

		meta, known := model.CatalogFeature(name)
		if known {
			if meta.Kind == model.KindCategorical {
				meta.Options = mergeVocabulary(meta.Options, values)
			} else if kind := inferKind(values); kind == model.KindCategorical {
				return model.Schema{}, fmt.Errorf("%w: column %q must be numeric", ErrMalformed, name)
			}
		} else {
			meta = inferMeta(name, values)
		}
		schema.Features = append(schema.Features, meta)
	}

	if len(schema.Features) == 0 {
		return model.Schema{}, fmt.Errorf("%w: no feature columns besides %q", ErrMalformed, target)
	}
	return schema, nil
}

// BuildTable parses a validated frame into typed columns.
func BuildTable(f *Frame, schema model.Schema) (*model.Table, error) {
	targetIdx := f.ColumnIndex(schema.Target)
	if targetIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingTarget, schema.Target)
	}

	idx := make([]int, len(schema.Features))
	for k, feat := range schema.Features {
		idx[k] = f.ColumnIndex(feat.Name)
		if idx[k] < 0 {
			return nil, fmt.Errorf("%w: column %q", ErrMalformed, feat.Name)
		}
	}

	table := model.NewTable(schema, f.Len())
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i, row := range f.Rows {
		line := i + 2
		y, err := model.ParseNumber(row[targetIdx])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d target %q is not numeric", ErrMalformed, line, row[targetIdx])
		}
		minY = math.Min(minY, y)
		maxY = math.Max(maxY, y)

		rec := model.NewRecord()
		for k, feat := range schema.Features {
			cell := row[idx[k]]
			if feat.Kind == model.KindCategorical {
				rec.Cats[feat.Name] = cell
				continue
			}
			n, err := model.ParseNumber(cell)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %q value %q is not numeric", ErrMalformed, line, feat.Name, cell)
			}
			rec.Nums[feat.Name] = n
		}
		table.Append(rec, y)
	}

	table.Schema.TargetMin = minY
	table.Schema.TargetMax = maxY
	return table, nil
}

func inferMeta(name string, values []string) model.FeatureMeta {
	meta := model.FeatureMeta{Name: name, Label: humanize(name), Kind: inferKind(values)}
	if meta.Kind == model.KindCategorical {
		meta.Options = mergeVocabulary(nil, values)
		return meta
	}

	lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
	for _, v := range values {
		n, _ := model.ParseNumber(v)
		lo = math.Min(lo, n)
		hi = math.Max(hi, n)
		sum += n
	}
	meta.Min, meta.Max = lo, hi
	meta.Default = sum / float64(len(values))
	if meta.Kind == model.KindInteger {
		meta.Default = math.Round(meta.Default)
		meta.Step = 1
	}
	return meta
}

// mergeVocabulary keeps the known options in order and appends unseen
// values sorted.
func mergeVocabulary(known, values []string) []string {
	out := make([]string, 0, len(known))
	seen := make(map[string]bool, len(known))
	for _, k := range known {
		out = append(out, k)
		seen[k] = true
	}
	var extra []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		extra = append(extra, v)
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// humanize turns a column name into a form label: "opening_hours" ->
// "Opening Hours".
func humanize(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
