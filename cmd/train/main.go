package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smesales/internal/applog"
	"smesales/internal/config"
	"smesales/internal/ml/automl"
	"smesales/internal/trainer"
)

var (
	configPath  = flag.String("config", "", "config file (default: config.toml in the working or executable directory)")
	datasetPath = flag.String("dataset", "", "dataset file, .csv or .xlsx (overrides [data] dataset_path)")
	modelPath   = flag.String("model", "", "model artifact path (overrides [data] model_dir/model_name)")
	writeConfig = flag.String("write-config", "", "write the effective config to this TOML file and exit")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  SME Sales Predictor - training")
	fmt.Println("==========================================")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *datasetPath != "" {
		cfg.Data.DatasetPath = *datasetPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if *writeConfig != "" {
		if err := config.SaveConfig(*writeConfig, cfg); err != nil {
			log.Fatalf("failed to write config: %v", err)
		}
		fmt.Printf("Config written to %s\n", *writeConfig)
		return
	}
	if err := applog.InitLogger(cfg.Log.Level); err != nil {
		log.Fatalf("invalid log level: %v", err)
	}

	opts := trainer.OptionsFromConfig(cfg)
	if *modelPath != "" {
		opts.ModelPath = *modelPath
	}
	fmt.Printf("Dataset: %s\nModel:   %s\n\n", opts.DatasetPath, opts.ModelPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var res *trainer.Result
	for evt := range trainer.NewPipeline(opts).Start(ctx) {
		switch evt.Type {
		case trainer.EventStage:
			if p, ok := evt.Data.(automl.ProgressEvent); ok && p.Total > 0 {
				fmt.Printf("\r%-28s %3d/%-3d", p.Stage, p.Done, p.Total)
				if p.Done == p.Total {
					fmt.Println()
				}
			}
		case trainer.EventError:
			fmt.Println()
			stop()
			log.Fatalf("training failed: %v", evt.Err)
		case trainer.EventDone:
			res, _ = evt.Data.(*trainer.Result)
		default:
			fmt.Println(evt.Message)
		}
	}
	if res == nil {
		fmt.Fprintln(os.Stderr, "training produced no model")
		os.Exit(1)
	}

	printSummary(res)
}

func printSummary(res *trainer.Result) {
	fmt.Println("\nLeaderboard (cross-validated)")
	fmt.Printf("  %-4s %-6s %-28s %10s %10s %8s\n", "#", "kind", "model", "MAE", "RMSE", "R2")
	for i, r := range res.Leaderboard {
		fmt.Printf("  %-4d %-6s %-28s %10.2f %10.2f %8.4f\n", i+1, r.Kind, r.Name, r.Mean.MAE, r.Mean.RMSE, r.Mean.R2)
	}

	fmt.Printf("\nTuned model: %s %v\n", res.Tuned.Name, res.Tuned.Params)
	if h := res.Holdout; h != nil {
		fmt.Printf("Holdout:     MAE=%.2f RMSE=%.2f R2=%.4f MAPE=%.4f\n", h.MAE, h.RMSE, h.R2, h.MAPE)
	}
	fmt.Printf("\nSaved %s (run %s) in %s\n", res.ModelPath, res.Artifact.RunID, res.Duration.Round(time.Millisecond))
	if res.ReportPath != "" {
		fmt.Printf("Report: %s\n", res.ReportPath)
	}
}
