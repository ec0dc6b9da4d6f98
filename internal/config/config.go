package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"smesales/internal/ml/metrics"
)

// AppConfig app configuration
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Training TrainingConfig `toml:"training"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig web server settings
type ServerConfig struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	DevMode     bool   `toml:"dev_mode"`
	OpenBrowser bool   `toml:"open_browser"`
}

// DataConfig dataset and model paths
type DataConfig struct {
	DatasetPath string `toml:"dataset_path"`
	ModelDir    string `toml:"model_dir"`
	ModelName   string `toml:"model_name"`
}

// TrainingConfig experiment settings
type TrainingConfig struct {
	Target         string   `toml:"target"` // empty: last column
	Seed           int64    `toml:"seed"`
	TrainSize      float64  `toml:"train_size"`
	Folds          int      `toml:"folds"`
	NSelect        int      `toml:"n_select"`
	NIter          int      `toml:"n_iter"`
	Optimize       string   `toml:"optimize"`
	Normalize      bool     `toml:"normalize"`
	Transformation bool     `toml:"transformation"`
	Include        []string `toml:"include"` // estimator kinds, empty: all
	Workers        int      `toml:"workers"`
	ReportPath     string   `toml:"report_path"` // optional leaderboard workbook
}

// LogConfig log settings
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfigInfo load metadata
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig defaults
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8501,
			DevMode:     false,
			OpenBrowser: true,
		},
		Data: DataConfig{
			DatasetPath: filepath.Join("data", "dataset.csv"),
			ModelDir:    "model",
			ModelName:   "best_model",
		},
		Training: TrainingConfig{
			Seed:           42,
			TrainSize:      0.7,
			Folds:          10,
			NSelect:        5,
			NIter:          50,
			Optimize:       string(metrics.R2),
			Normalize:      true,
			Transformation: true,
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

// Validate checks value ranges after loading and flag overrides.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Data.ModelName == "" {
		return errors.New("data.model_name is required")
	}
	if c.Training.TrainSize <= 0 || c.Training.TrainSize > 1 {
		return fmt.Errorf("training.train_size %.2f out of range (0, 1]", c.Training.TrainSize)
	}
	if c.Training.Folds < 2 {
		return fmt.Errorf("training.folds must be at least 2, got %d", c.Training.Folds)
	}
	if c.Training.NSelect < 1 {
		return fmt.Errorf("training.n_select must be at least 1, got %d", c.Training.NSelect)
	}
	if c.Training.NIter < 0 {
		return fmt.Errorf("training.n_iter must not be negative, got %d", c.Training.NIter)
	}
	if _, err := metrics.ParseMetric(c.Training.Optimize); err != nil {
		return fmt.Errorf("training.optimize: %w", err)
	}
	return nil
}

// OptimizeMetric returns the parsed tuning metric. Call Validate first.
func (c *AppConfig) OptimizeMetric() metrics.Metric {
	m, err := metrics.ParseMetric(c.Training.Optimize)
	if err != nil {
		return metrics.R2
	}
	return m
}

// Addr is the listen address host:port.
func (c *AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir executable directory
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath prefers config.toml in the working directory, then
// next to the executable.
func DefaultConfigPath() string {
	if _, err := os.Stat("config.toml"); err == nil {
		return "config.toml"
	}
	exeDir, err := GetExeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo reads path over the defaults. A missing file is not
// an error; the defaults are returned as-is.
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, info, nil
		}
		return nil, info, err
	}
	info.FileFound = true
	info.PortSpecified = isPortSpecifiedInToml(data)

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, fmt.Errorf("parse %s: %w", path, err)
	}
	return config, info, nil
}

// LoadConfig load config from path
func LoadConfig(path string) (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo(path)
	return config, err
}

// SaveConfig writes config to path as TOML, creating the parent directory.
func SaveConfig(path string, config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
