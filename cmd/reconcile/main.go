// Package main is the reconciliation batch driver: it loads the movement feed
// and the override/starting-stock workbooks, runs the cost-correction pass,
// and writes the timeline, ledger and movement reports.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"recusto/internal/core/types"
	"recusto/internal/domain/movement"
	"recusto/internal/domain/reconcile"
	"recusto/internal/domain/registers/stock"
	"recusto/internal/domain/valuation"
	"recusto/internal/infrastructure/excel"
	"recusto/internal/infrastructure/storage/postgres"
	"recusto/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	runID := uuid.NewString()
	ctx := logger.WithRunID(logger.WithLogger(context.Background(), log), runID)

	log.Infow("starting reconciliation batch", "run_id", runID)

	// --- Feed window ---
	from := mustEnvDate("FEED_FROM")
	to := mustEnvDate("FEED_TO")

	filter := postgres.DefaultFeedFilter(from, to)
	filter.IncludeOrders = getEnvInt64List("INCLUDE_ORDERS")

	// --- Engine configuration ---
	cfg := reconcile.DefaultConfig()
	if v := os.Getenv("ANOMALY_THRESHOLD"); v != "" {
		threshold, err := types.NewMoneyFromString(v)
		if err != nil {
			log.Fatalw("invalid ANOMALY_THRESHOLD", "value", v, "error", err)
		}
		cfg.AnomalyThreshold = threshold
	}
	cfg.RequireProductionOutputs = getEnv("REQUIRE_PRODUCTION_OUTPUTS", "false") == "true"

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	postgres.LogPoolStats(ctx, pool.Unwrap())

	// --- Inputs ---
	records, err := postgres.NewFeedRepo(pool).ListMovements(ctx, filter)
	if err != nil {
		log.Fatalw("failed to fetch movement feed", "error", err)
	}

	overridesPath := getEnv("OVERRIDES_PATH", "correct_movements_costs.xlsx")
	overrides, err := excel.LoadOverrides(overridesPath, excel.OverridesSheet)
	if err != nil {
		log.Fatalw("failed to load override workbook", "path", overridesPath, "error", err)
	}
	log.Infow("loaded cost overrides", "count", len(overrides))

	startStockPath := getEnv("START_STOCK_PATH", "start_stock.xlsx")
	startRows, err := excel.LoadStartingStock(startStockPath, excel.StartingStockSheet)
	if err != nil {
		log.Fatalw("failed to load starting stock workbook", "path", startStockPath, "error", err)
	}

	ledger := stock.NewLedger(cfg.AnomalyThreshold)
	for _, row := range startRows {
		if err := ledger.Seed(row.ItemID, row.Description, row.Quantity, row.TotalCost, row.OriginalTotalCost); err != nil {
			log.Fatalw("failed to seed starting stock", "item_id", row.ItemID, "error", err)
		}
	}
	log.Infow("seeded starting stock", "items", ledger.Len())

	// Classify: overrides are left-joined by movement id, unmatched movements
	// get none.
	ms := make([]*movement.Movement, 0, len(records))
	for _, rec := range records {
		var override *types.Money
		if v, ok := overrides[rec.MovementID]; ok {
			override = &v
		}
		ms = append(ms, movement.Classify(rec, override))
	}

	// --- Pass ---
	timeline := valuation.NewTimeline()
	engine := reconcile.NewEngine(cfg)
	if err := engine.Run(ctx, ms, ledger, timeline); err != nil {
		log.Fatalw("reconciliation failed", "error", err)
	}

	// --- Reports ---
	outDir := getEnv("OUTPUT_DIR", "analysis")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatalw("failed to create output directory", "dir", outDir, "error", err)
	}

	writer := excel.NewWriter(runID)
	if err := writer.WriteTimeline(filepath.Join(outDir, "stock_resume.xlsx"), timeline.Snapshots()); err != nil {
		log.Fatalw("failed to write timeline report", "error", err)
	}
	if err := writer.WriteLedger(filepath.Join(outDir, "final_stock.xlsx"), ledger.Positions()); err != nil {
		log.Fatalw("failed to write ledger report", "error", err)
	}
	if err := writer.WriteMovements(filepath.Join(outDir, "stock_movements.xlsx"), ms); err != nil {
		log.Fatalw("failed to write movement report", "error", err)
	}

	log.Infow("reconciliation batch completed",
		"run_id", runID,
		"movements", len(ms),
		"items", ledger.Len(),
		"snapshots", timeline.Len(),
		"output_dir", outDir,
	)
}

// --- Environment helpers ---

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("%s environment variable is required\n", key)
		os.Exit(1)
	}
	return value
}

func mustEnvDate(key string) time.Time {
	value := mustEnv(key)
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		fmt.Printf("%s must be a date in YYYY-MM-DD form, got %q\n", key, value)
		os.Exit(1)
	}
	return t
}

func getEnvInt64List(key string) []int64 {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			fmt.Printf("%s must be a comma-separated list of ids, got %q\n", key, value)
			os.Exit(1)
		}
		out = append(out, n)
	}
	return out
}
