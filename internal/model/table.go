package model

// Table is a typed, column-oriented view of training rows.
// Categorical columns live in Cats, numeric ones in Nums, keyed by name.
type Table struct {
	Schema Schema
	Cats   map[string][]string
	Nums   map[string][]float64
	Target []float64
	n      int
}

// NewTable allocates an empty table with room for n rows.
func NewTable(schema Schema, n int) *Table {
	t := &Table{
		Schema: schema,
		Cats:   make(map[string][]string),
		Nums:   make(map[string][]float64),
		Target: make([]float64, 0, n),
	}
	for _, f := range schema.Features {
		if f.Kind == KindCategorical {
			t.Cats[f.Name] = make([]string, 0, n)
		} else {
			t.Nums[f.Name] = make([]float64, 0, n)
		}
	}
	return t
}

// Append adds one row. Missing record values are stored as zero values;
// callers validate before appending.
func (t *Table) Append(rec Record, target float64) {
	for _, f := range t.Schema.Features {
		if f.Kind == KindCategorical {
			t.Cats[f.Name] = append(t.Cats[f.Name], rec.Cats[f.Name])
		} else {
			t.Nums[f.Name] = append(t.Nums[f.Name], rec.Nums[f.Name])
		}
	}
	t.Target = append(t.Target, target)
	t.n++
}

// Len row count
func (t *Table) Len() int {
	return t.n
}

// Row returns row i as a record.
func (t *Table) Row(i int) Record {
	rec := NewRecord()
	for name, col := range t.Cats {
		rec.Cats[name] = col[i]
	}
	for name, col := range t.Nums {
		rec.Nums[name] = col[i]
	}
	return rec
}

// Subset copies the rows at idx, in idx order.
func (t *Table) Subset(idx []int) *Table {
	out := NewTable(t.Schema, len(idx))
	for _, i := range idx {
		out.Append(t.Row(i), t.Target[i])
	}
	return out
}

// Concat returns a new table holding the rows of t followed by other.
func (t *Table) Concat(other *Table) *Table {
	out := NewTable(t.Schema, t.n+other.n)
	for i := 0; i < t.n; i++ {
		out.Append(t.Row(i), t.Target[i])
	}
	for i := 0; i < other.n; i++ {
		out.Append(other.Row(i), other.Target[i])
	}
	return out
}
