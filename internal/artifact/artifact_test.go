package artifact

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"smesales/internal/dataset"
	"smesales/internal/ml/automl"
	"smesales/internal/model"
)

func trainedArtifact(t *testing.T, kind string) (*Artifact, *automl.Fitted, *model.Table) {
	t.Helper()

	f := dataset.Synthesize(60, 5)
	schema, err := dataset.InferSchema(f, model.ColMonthlySales)
	if err != nil {
		t.Fatalf("infer schema: %v", err)
	}
	tbl, err := dataset.BuildTable(f, schema)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}

	cfg := automl.DefaultConfig()
	cfg.Folds = 3
	e, err := automl.Setup(tbl, cfg)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	fitted, err := e.Finalize(automl.Result{Kind: kind})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	a, err := New(tbl.Schema, fitted, Meta{Seed: cfg.Seed, Rows: tbl.Len()})
	if err != nil {
		t.Fatalf("new artifact: %v", err)
	}
	return a, fitted, tbl
}

func TestSaveLoad_RoundTripPredictions(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{"ridge", "gbr", "knn"} {
		a, fitted, tbl := trainedArtifact(t, kind)
		path := Path(t.TempDir(), "best_model")
		if err := Save(path, a); err != nil {
			t.Fatalf("%s save: %v", kind, err)
		}

		loaded, err := Load(path)
		if err != nil {
			t.Fatalf("%s load: %v", kind, err)
		}
		if loaded.RunID != a.RunID || loaded.Schema.Target != model.ColMonthlySales {
			t.Fatalf("%s metadata lost: %+v", kind, loaded)
		}
		m, err := loaded.Model()
		if err != nil {
			t.Fatalf("%s model: %v", kind, err)
		}

		for i := 0; i < tbl.Len(); i++ {
			want, err := fitted.Predict(tbl.Row(i))
			if err != nil {
				t.Fatalf("predict: %v", err)
			}
			got, err := m.Predict(tbl.Row(i))
			if err != nil {
				t.Fatalf("predict loaded: %v", err)
			}
			if got != want {
				t.Fatalf("%s row %d: before=%v after=%v", kind, i, want, got)
			}
		}
	}
}

func TestSave_OverwritesWholesale(t *testing.T) {
	t.Parallel()

	path := Path(t.TempDir(), "best_model.json.gz")
	first, _, _ := trainedArtifact(t, "ridge")
	second, _, _ := trainedArtifact(t, "dt")
	if err := Save(path, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := Save(path, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.RunID != second.RunID || got.Estimator.Kind != "dt" {
		t.Fatalf("expected second run, got %s/%s", got.RunID, got.Estimator.Kind)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "none.json.gz"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestLoad_RejectsOtherVersions(t *testing.T) {
	t.Parallel()

	a, _, _ := trainedArtifact(t, "ridge")
	a.FormatVersion = FormatVersion + 1
	path := filepath.Join(t.TempDir(), "future.json.gz")
	if err := Save(path, a); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := Load(path); !errors.Is(err, ErrIncompatible) {
		t.Fatalf("want ErrIncompatible, got %v", err)
	}
}

func TestLoad_RejectsForeignFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.json.gz")
	if err := os.WriteFile(plain, []byte(`{"format":"sme-sales-model"}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(plain); !errors.Is(err, ErrIncompatible) {
		t.Fatalf("plain json: want ErrIncompatible, got %v", err)
	}

	other := filepath.Join(dir, "other.json.gz")
	file, err := os.Create(other)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := gzip.NewWriter(file)
	_ = json.NewEncoder(zw).Encode(map[string]any{"format": "pickle", "formatVersion": 1})
	_ = zw.Close()
	_ = file.Close()
	if _, err := Load(other); !errors.Is(err, ErrIncompatible) {
		t.Fatalf("foreign format: want ErrIncompatible, got %v", err)
	}
}

func TestPath(t *testing.T) {
	t.Parallel()

	if got := Path("model", "best_model"); got != filepath.Join("model", "best_model.json.gz") {
		t.Fatalf("unexpected path %q", got)
	}
	if got := Path("model", "m.json.gz"); got != filepath.Join("model", "m.json.gz") {
		t.Fatalf("unexpected path %q", got)
	}
}
