package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/caseylessard/hilljump-sub001/internal/infra/database/postgres"
	"github.com/caseylessard/hilljump-sub001/internal/infra/divhistory"
	"github.com/caseylessard/hilljump-sub001/internal/pkg/config"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Connect to database
	ctx := context.Background()
	dbPool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// Resolve the active universe
	tickerRepo := postgres.NewTickerRepository(dbPool)
	tickers, err := tickerRepo.ListActive(ctx)
	if err != nil {
		fmt.Printf("Failed to list tickers: %v\n", err)
		os.Exit(1)
	}

	if len(tickers) == 0 {
		fmt.Println("No active tickers found")
		return
	}

	symbols := make([]string, 0, len(tickers))
	for _, t := range tickers {
		symbols = append(symbols, t.Symbol)
	}

	fmt.Printf("Fetching distributions for %d tickers: %s\n", len(symbols), strings.Join(symbols, ", "))

	client := divhistory.NewClient()
	distRepo := postgres.NewDistributionRepository(dbPool)

	saved := 0
	for _, symbol := range symbols {
		events, err := client.FetchDistributions(ctx, symbol)
		if err != nil {
			fmt.Printf("Failed to fetch distributions for %s: %v\n", symbol, err)
			continue
		}
		if len(events) == 0 {
			fmt.Printf("  %s: no distributions published\n", symbol)
			continue
		}

		n, err := distRepo.UpsertBatch(ctx, symbol, events)
		if err != nil {
			fmt.Printf("Failed to save distributions for %s: %v\n", symbol, err)
			continue
		}

		fmt.Printf("  %s: %d events\n", symbol, n)
		saved++
	}

	fmt.Printf("Saved distributions for %d/%d tickers\n", saved, len(symbols))
}
