package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigWithInfo_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, info, err := LoadConfigWithInfo(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if info.FileFound {
		t.Fatalf("expected FileFound=false")
	}
	if cfg.Server.Port != 8501 || cfg.Server.Host != "127.0.0.1" {
		t.Fatalf("unexpected default addr: %s", cfg.Addr())
	}
	if cfg.Training.Seed != 42 || cfg.Training.Folds != 10 || cfg.Training.NIter != 50 {
		t.Fatalf("unexpected training defaults: %+v", cfg.Training)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadConfigWithInfo_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 9000

[training]
target = "sales"
folds = 5
optimize = "RMSE"
normalize = false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, info, err := LoadConfigWithInfo(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !info.FileFound || !info.PortSpecified {
		t.Fatalf("unexpected info: %+v", info)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	// untouched keys keep their defaults
	if cfg.Server.Host != "127.0.0.1" || cfg.Training.Seed != 42 || !cfg.Training.Transformation {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if cfg.Training.Target != "sales" || cfg.Training.Folds != 5 || cfg.Training.Normalize {
		t.Fatalf("training not applied: %+v", cfg.Training)
	}
	if got := cfg.OptimizeMetric(); got != "RMSE" {
		t.Fatalf("optimize = %s", got)
	}
}

func TestLoadConfigWithInfo_PortNotSpecified(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[log]\nlevel = \"DEBUG\"\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, info, err := LoadConfigWithInfo(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if info.PortSpecified {
		t.Fatalf("expected PortSpecified=false")
	}
	if cfg.Log.Level != "DEBUG" {
		t.Fatalf("level = %s", cfg.Log.Level)
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\nport ="), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *AppConfig)
	}{
		{"port", func(c *AppConfig) { c.Server.Port = 0 }},
		{"train size", func(c *AppConfig) { c.Training.TrainSize = 1.5 }},
		{"folds", func(c *AppConfig) { c.Training.Folds = 1 }},
		{"n_select", func(c *AppConfig) { c.Training.NSelect = 0 }},
		{"n_iter", func(c *AppConfig) { c.Training.NIter = -1 }},
		{"optimize", func(c *AppConfig) { c.Training.Optimize = "accuracy" }},
		{"model name", func(c *AppConfig) { c.Data.ModelName = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Training.Include = []string{"lr", "rf"}
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Training.Include) != 2 || got.Training.Include[1] != "rf" {
		t.Fatalf("include = %v", got.Training.Include)
	}
}

func TestSaveConfig_WritesEffectiveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "config.toml")
	cfg := DefaultConfig()
	cfg.Data.DatasetPath = "data/shops.xlsx"
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, info, err := LoadConfigWithInfo(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !info.FileFound || !info.PortSpecified {
		t.Fatalf("info = %+v", info)
	}
	if got.Data.DatasetPath != "data/shops.xlsx" || got.Server.Port != cfg.Server.Port {
		t.Fatalf("config = %+v", got)
	}
}
