package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"smesales/internal/model"
)

const sampleCSV = "\ufeffbusiness_type,location_type,state,num_employees,marketing_spend_naira,inventory_value_naira,monthly_sales_thousands\n" +
	"Retail,Market,Lagos,5,50000,800000,1200.0\n" +
	"Salon,Mall,Abuja,2,12000,150000,420.5\n" +
	"\n" +
	"Bakery,Online,Kano,8,90000,2000000,2100\n"

func TestReadCSV_HeaderAndRows(t *testing.T) {
	t.Parallel()

	f, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if f.Header[0] != model.ColBusinessType {
		t.Fatalf("BOM not stripped: %q", f.Header[0])
	}
	if f.Len() != 3 {
		t.Fatalf("want 3 rows, got %d", f.Len())
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestReadCSV_RaggedRowIsMalformed(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(strings.NewReader("a,b,c\n1,2,3\n1,2\n"))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}

func TestValidate_RejectsPartialData(t *testing.T) {
	t.Parallel()

	f := &Frame{
		Header: []string{"a", "b"},
		Rows:   [][]string{{"1", "2"}, {"3", ""}},
	}
	err := f.Validate()
	if !errors.Is(err, ErrMalformed) || !strings.Contains(err.Error(), `line 3 column "b"`) {
		t.Fatalf("unexpected error: %v", err)
	}

	dup := &Frame{Header: []string{"a", "a"}, Rows: [][]string{{"1", "2"}}}
	if err := dup.Validate(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("duplicate header accepted: %v", err)
	}

	empty := &Frame{Header: []string{"a"}}
	if err := empty.Validate(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("want ErrEmpty, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestResolveTarget(t *testing.T) {
	t.Parallel()

	f, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got, err := f.ResolveTarget("")
	if err != nil || got != model.ColMonthlySales {
		t.Fatalf("default target: %q %v", got, err)
	}
	if _, err := f.ResolveTarget("revenue"); !errors.Is(err, ErrMissingTarget) {
		t.Fatalf("want ErrMissingTarget, got %v", err)
	}
}

func TestInferSchema_WidensVocabularyAndTypesExtraColumns(t *testing.T) {
	t.Parallel()

	f := &Frame{
		Header: []string{model.ColBusinessType, model.ColNumEmployees, "opening_hours", "month", model.ColMonthlySales},
		Rows: [][]string{
			{"Bakery", "3", "8", "June", "100"},
			{"Retail", "4", "16", "May", "200.5"},
		},
	}
	schema, err := InferSchema(f, model.ColMonthlySales)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}

	biz, _ := schema.Feature(model.ColBusinessType)
	if biz.Options[0] != "Retail" || biz.Options[len(biz.Options)-1] != "Bakery" {
		t.Fatalf("unexpected vocabulary: %v", biz.Options)
	}
	hours, _ := schema.Feature("opening_hours")
	if hours.Kind != model.KindInteger || hours.Min != 8 || hours.Max != 16 || hours.Default != 12 {
		t.Fatalf("unexpected numeric meta: %+v", hours)
	}
	month, _ := schema.Feature("month")
	if month.Kind != model.KindCategorical || len(month.Options) != 2 || month.Label != "Month" {
		t.Fatalf("unexpected categorical meta: %+v", month)
	}

	table, err := BuildTable(f, schema)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if table.Len() != 2 || table.Schema.TargetMin != 100 || table.Schema.TargetMax != 200.5 {
		t.Fatalf("unexpected table: len=%d min=%v max=%v", table.Len(), table.Schema.TargetMin, table.Schema.TargetMax)
	}
}

func TestInferSchema_CatalogNumericMustParse(t *testing.T) {
	t.Parallel()

	f := &Frame{
		Header: []string{model.ColNumEmployees, model.ColMonthlySales},
		Rows:   [][]string{{"many", "1"}},
	}
	if _, err := InferSchema(f, model.ColMonthlySales); !errors.Is(err, ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}

func TestBuildTable_NonNumericTarget(t *testing.T) {
	t.Parallel()

	f := &Frame{
		Header: []string{model.ColState, "label"},
		Rows:   [][]string{{"Lagos", "high"}},
	}
	schema, err := InferSchema(f, "label")
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if _, err := BuildTable(f, schema); !errors.Is(err, ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}

func TestSynthesize_DeterministicAndValid(t *testing.T) {
	t.Parallel()

	a, b := Synthesize(50, 7), Synthesize(50, 7)
	var bufA, bufB bytes.Buffer
	if err := WriteCSV(&bufA, a); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteCSV(&bufB, b); err != nil {
		t.Fatalf("write: %v", err)
	}
	if bufA.String() != bufB.String() {
		t.Fatalf("same seed produced different data")
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("synthetic frame invalid: %v", err)
	}

	back, err := ReadCSV(&bufA)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if back.Len() != 50 {
		t.Fatalf("want 50 rows, got %d", back.Len())
	}
}

func TestWorkbookRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dataset.xlsx")
	src := Synthesize(12, 3)
	if err := WriteWorkbook(path, src); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Len() != src.Len() || len(got.Header) != len(src.Header) {
		t.Fatalf("shape mismatch: %dx%d", got.Len(), len(got.Header))
	}
	for i := range src.Rows {
		for j := range src.Rows[i] {
			if got.Rows[i][j] != src.Rows[i][j] {
				t.Fatalf("cell %d,%d want=%q got=%q", i, j, src.Rows[i][j], got.Rows[i][j])
			}
		}
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()

	f := &Frame{
		Header: []string{"a", "b"},
		Rows:   [][]string{{"1", "x"}, {"2.5", ""}, {"3", "y"}},
	}
	s := Inspect(f, 2)
	if s.Rows != 3 || len(s.Preview) != 2 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Columns[0].Kind != model.KindFloat || s.Columns[1].Missing != 1 || s.MissingTotal() != 1 {
		t.Fatalf("unexpected columns: %+v", s.Columns)
	}
}

func TestBuildTable_RejectsMisgroupedNumbers(t *testing.T) {
	t.Parallel()

	f := &Frame{
		Header: []string{"opening_hours", model.ColMonthlySales},
		Rows: [][]string{
			{"8", "100"},
			{"12", "1,0"},
		},
	}
	schema, err := InferSchema(f, model.ColMonthlySales)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if _, err := BuildTable(f, schema); !errors.Is(err, ErrMalformed) {
		t.Fatalf("want ErrMalformed for target 1,0, got %v", err)
	}

	catalog := &Frame{
		Header: []string{model.ColNumEmployees, model.ColMonthlySales},
		Rows:   [][]string{{"1,0", "100"}, {"3", "200"}},
	}
	if _, err := InferSchema(catalog, model.ColMonthlySales); !errors.Is(err, ErrMalformed) {
		t.Fatalf("want ErrMalformed for employees 1,0, got %v", err)
	}
}

func TestHumanize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"opening_hours":   "Opening Hours",
		"état_du_magasin": "État Du Magasin",
		"ñame":            "Ñame",
		"a__b":            "A B",
	}
	for in, want := range cases {
		got := humanize(in)
		if got != want {
			t.Fatalf("humanize(%q) want=%q got=%q", in, want, got)
		}
		if !utf8.ValidString(got) {
			t.Fatalf("humanize(%q) produced invalid UTF-8", in)
		}
	}
}
