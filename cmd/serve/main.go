package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"smesales/internal/applog"
	"smesales/internal/artifact"
	"smesales/internal/config"
	"smesales/internal/server"
	"smesales/internal/service/predict"
	"smesales/internal/util"
)

var (
	configPath = flag.String("config", "", "config file (default: config.toml in the working or executable directory)")
	port       = flag.Int("port", 0, "listen port (only when config.toml does not set one)")
	modelPath  = flag.String("model", "", "model artifact path (overrides [data] model_dir/model_name)")
	devMode    = flag.Bool("dev", false, "development mode: gin debug logging, no browser")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  SME Sales Predictor")
	fmt.Println("==========================================")

	cfg, info, err := config.LoadConfigWithInfo(*configPath)
	if err != nil {
		log.Printf("failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	if err := applog.InitLogger(cfg.Log.Level); err != nil {
		log.Fatalf("invalid log level: %v", err)
	}

	path := *modelPath
	if path == "" {
		path = artifact.Path(cfg.Data.ModelDir, cfg.Data.ModelName)
	}
	predictor, err := predict.Load(path)
	if err != nil {
		switch {
		case errors.Is(err, artifact.ErrNotFound):
			log.Fatalf("no trained model at %s; run the train command first", path)
		case errors.Is(err, artifact.ErrIncompatible):
			log.Fatalf("model %s is incompatible with this build, retrain it: %v", path, err)
		}
		log.Fatalf("failed to load model: %v", err)
	}
	a := predictor.Artifact()
	fmt.Printf("Model: %s (run %s, trained %s)\n", a.EstimatorName(), a.RunID, a.CreatedAt.Format("2006-01-02 15:04"))

	srv, err := server.NewServer(cfg, predictor)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	addr := cfg.Addr()
	url := util.LocalURL(cfg.Server.Host, cfg.Server.Port)

	go func() {
		fmt.Printf("Listening on %s ...\n", addr)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	}()

	if cfg.Server.OpenBrowser && !cfg.Server.DevMode {
		fmt.Printf("Opening browser: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("Could not open a browser, visit %s manually\n", url)
		}
	} else {
		fmt.Printf("Visit %s\n", url)
	}

	fmt.Println("\nPress Ctrl+C to stop...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down")
}
