package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/cj"
	"github.com/glowmart/cjfulfill/internal/config"
	"github.com/glowmart/cjfulfill/internal/repository/postgres"
	"github.com/glowmart/cjfulfill/internal/service"
)

// Runs one catalog sync from the shell, same engine the API endpoint uses.
func main() {
	_ = godotenv.Load()

	var opts service.SyncOptions
	flag.StringVar(&opts.Keyword, "keyword", "", "search term to filter the supplier catalog")
	flag.StringVar(&opts.CategoryID, "category", "", "supplier category ID to filter by")
	flag.IntVar(&opts.StartPage, "start-page", 1, "first page to fetch")
	flag.IntVar(&opts.PageSize, "page-size", 20, "products per page")
	flag.IntVar(&opts.MaxPages, "max-pages", 5, "maximum pages to fetch")
	flag.Float64Var(&opts.MinPrice, "min-price", 0, "minimum supplier price filter")
	flag.Float64Var(&opts.MaxPrice, "max-price", 0, "maximum supplier price filter")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)
	tokens := cj.NewTokenProvider(cfg.CJ, logger)
	client := cj.NewClient(cfg.CJ, tokens, logger)

	engine := service.NewProductSyncEngine(client, repos, cfg, logger)
	run, err := engine.SyncProducts(context.Background(), opts)
	if err != nil {
		logger.Error("Sync failed", zap.Error(err))
	}
	if run == nil {
		os.Exit(1)
	}

	fmt.Printf("sync run %s: %s\n", run.ID, run.Status)
	fmt.Printf("  processed: %d  created: %d  updated: %d  failed: %d\n",
		run.ItemsProcessed, run.ItemsCreated, run.ItemsUpdated, run.ItemsFailed)
	for _, msg := range run.ErrorMessages {
		fmt.Printf("  error: %s\n", msg)
	}
	if run.Status == "failed" {
		os.Exit(1)
	}
}
