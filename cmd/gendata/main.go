package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"smesales/internal/config"
	"smesales/internal/dataset"
)

var (
	configPath = flag.String("config", "", "config file (default: config.toml in the working or executable directory)")
	outPath    = flag.String("out", "", "output file, .csv or .xlsx (default: [data] dataset_path)")
	rows       = flag.Int("rows", 500, "number of rows")
	seed       = flag.Int64("seed", 42, "random seed")
)

func main() {
	flag.Parse()

	path := *outPath
	if path == "" {
		cfg, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		path = cfg.Data.DatasetPath
	}
	if *rows < 1 {
		log.Fatalf("rows must be positive, got %d", *rows)
	}

	frame := dataset.Synthesize(*rows, *seed)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.Fatalf("create directory: %v", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		if err := dataset.WriteWorkbook(path, frame); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
	} else {
		file, err := os.Create(path)
		if err != nil {
			log.Fatalf("create %s: %v", path, err)
		}
		if err := dataset.WriteCSV(file, frame); err != nil {
			_ = file.Close()
			log.Fatalf("write %s: %v", path, err)
		}
		if err := file.Close(); err != nil {
			log.Fatalf("close %s: %v", path, err)
		}
	}

	fmt.Printf("Wrote %d rows to %s\n", frame.Len(), path)
}
