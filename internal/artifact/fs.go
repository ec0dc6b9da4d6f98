package artifact

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Path joins the model directory and base name, adding the extension
// unless name already carries it.
func Path(dir, name string) string {
	if !strings.HasSuffix(name, Extension) {
		name += Extension
	}
	return filepath.Join(dir, name)
}

// Save writes a to path, replacing any previous model in one rename.
func Save(path string, a *Artifact) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	zw := gzip.NewWriter(file)
	zw.Name = filepath.Base(strings.TrimSuffix(path, ".gz"))
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode model: %w", err)
	}
	if err := zw.Close(); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads and checks the model at path.
func Load(path string) (*Artifact, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: not a gzip file: %v", ErrIncompatible, err)
	}
	defer zr.Close()

	var a Artifact
	if err := json.NewDecoder(zr).Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatible, err)
	}
	if err := a.check(); err != nil {
		return nil, err
	}
	return &a, nil
}
