// Command topazrun plays a game to completion in batch, printing each
// quarter's management report and a league table at every year end.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/talgya/topaz-sim/internal/config"
	"github.com/talgya/topaz-sim/internal/engine"
	"github.com/talgya/topaz-sim/internal/persistence"
	"github.com/talgya/topaz-sim/internal/report"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("TOPAZ_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	quarters := flag.Int("quarters", 8, "quarters to simulate")
	seed := flag.Int64("seed", cfg.Seed, "random seed")
	companies := flag.Int("companies", cfg.Companies, "companies in the market")
	allocation := flag.String("allocation", cfg.Allocation, "simultaneous or sequential")
	company := flag.Int("company", 0, "company whose reports are printed; -1 prints all")
	asJSON := flag.Bool("json", false, "print reports as JSON lines")
	dbPath := flag.String("db", "", "also save the game to this SQLite file")
	flag.Parse()

	level, _ := cfg.Level()
	slog.SetDefault(config.NewLogger(os.Stderr, level))

	if err := run(*quarters, *seed, *companies, engine.Allocation(*allocation), *company, *asJSON, *dbPath); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(quarters int, seed int64, companies int, alloc engine.Allocation, company int, asJSON bool, dbPath string) error {
	sim := engine.New(engine.Options{Players: 1, Seed: seed, Companies: companies, Allocation: alloc})
	if company >= len(sim.Companies) {
		return fmt.Errorf("company %d out of range (%d companies)", company, len(sim.Companies))
	}

	var db *persistence.DB
	gameID := uuid.NewString()
	if dbPath != "" {
		var err error
		db, err = persistence.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.CreateGame(gameID, sim.Snapshot()); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(os.Stdout)
	var saveErr error

	runner := engine.NewRunner(sim, quarters)
	runner.OnQuarter = func(res *engine.StepResult) {
		if db != nil && saveErr == nil {
			saveErr = db.SaveStep(gameID, sim.Snapshot(), res)
		}
		for i := range res.Reports {
			if company >= 0 && i != company {
				continue
			}
			if asJSON {
				enc.Encode(&res.Reports[i])
				continue
			}
			if err := report.WriteText(os.Stdout, &res.Reports[i]); err != nil {
				slog.Error("write report", "error", err)
			}
			fmt.Println()
		}
	}
	runner.OnYearEnd = func(year int, reports []report.ManagementReport) {
		if asJSON {
			return
		}
		printLeague(year, reports)
	}

	if err := runner.Run(ctx); err != nil {
		return err
	}
	if saveErr != nil {
		return fmt.Errorf("save game %s: %w", gameID, saveErr)
	}
	if db != nil {
		slog.Info("game saved", "id", gameID, "path", dbPath)
	}
	return nil
}

// printLeague ranks companies by share price.
func printLeague(year int, reports []report.ManagementReport) {
	ranked := slices.Clone(reports)
	slices.SortStableFunc(ranked, func(a, b report.ManagementReport) int {
		switch {
		case a.SharePrice > b.SharePrice:
			return -1
		case a.SharePrice < b.SharePrice:
			return 1
		}
		return 0
	})

	fmt.Printf("League table, end of year %d\n", year)
	for i, r := range ranked {
		fmt.Printf("%2d. %-12s %-16s £%6.2f %14s\n", i+1, r.Company, r.Strategy, r.SharePrice, report.Money(r.NetWorth))
	}
	fmt.Println()
}
