package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"cgtminer/internal/config"
	"cgtminer/internal/engine"
	"cgtminer/internal/ledger"
	"cgtminer/internal/reward"
	"cgtminer/internal/server"
	"cgtminer/internal/telemetry"
)

func main() {
	var (
		configPath = flag.String("config", "cgtminer.yml", "path to the balance config")
		dataDir    = flag.String("data-dir", "data", "save directory")
		addr       = flag.String("addr", ":8080", "listen address")
	)
	flag.Parse()

	logger := log.Default()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load config: %v", err)
		}
		cfg = config.Default()
	}
	config.FromEnv(cfg)

	repo, err := ledger.NewFileRepo(*dataDir, cfg.SaveKey, logger)
	if err != nil {
		logger.Fatalf("open save: %v", err)
	}

	events := telemetry.NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, err := engine.New(ctx, engine.Options{
		Config:  cfg,
		Repo:    repo,
		Rewards: reward.NewClient(cfg.Reward, logger),
		Events:  events,
		Log:     logger,
	})
	if err != nil {
		logger.Fatalf("boot engine: %v", err)
	}

	hub := server.NewHub(logger)
	go hub.Run()
	eng.SetOnChange(hub.BroadcastSnapshot)

	go func() {
		if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("engine stopped: %v", err)
		}
	}()

	handler := server.NewHandler(server.Options{
		App: &server.App{
			Engine:  eng,
			Events:  events,
			Hub:     hub,
			Config:  cfg,
			Logger:  logger,
			BootNow: time.Now(),
		},
		Port: *addr,
	})

	logger.Printf("cgtminer listening on %s (saves in %s)", *addr, *dataDir)
	if err := http.ListenAndServe(*addr, handler); err != nil {
		logger.Println(err)
		os.Exit(1)
	}
}
