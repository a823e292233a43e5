package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"paritycheck/internal/config"
	"paritycheck/internal/storage"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "paritycheck",
		Short: "Functional-equivalence gate for a legacy C++ library and its port",
	}
	configPath string
	dbPath     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "paritycheck.yaml", "Path to the verification config")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "paritycheck.db", "Path to the run ledger database (SQLite)")

	rootCmd.AddCommand(parityCmd)
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(surfaceCmd)
	rootCmd.AddCommand(coverageCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(gateCmd)
	rootCmd.AddCommand(triageCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", configPath, err)
	}
	return cfg
}

// ledger wraps the optional run ledger so commands stay readable when the
// database is unavailable.
type ledger struct {
	store *storage.SQLiteStore
	runID int64
}

func beginRun(ctx context.Context, stage string) *ledger {
	if dbPath == "" {
		return &ledger{}
	}
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		fmt.Printf("⚠️  Run ledger unavailable: %v\n", err)
		return &ledger{}
	}
	id, err := store.BeginRun(ctx, stage)
	if err != nil {
		fmt.Printf("⚠️  Failed to record run: %v\n", err)
		store.Close()
		return &ledger{}
	}
	return &ledger{store: store, runID: id}
}

func (l *ledger) artifact(ctx context.Context, name, path string) {
	if l.store == nil {
		return
	}
	if err := l.store.RecordArtifact(ctx, l.runID, name, path); err != nil {
		fmt.Printf("⚠️  Failed to record artifact %s: %v\n", name, err)
	}
}

func (l *ledger) gate(ctx context.Context, artifact, mode string, pass bool, summary string) {
	if l.store == nil {
		return
	}
	err := l.store.RecordGate(ctx, storage.GateRecord{
		RunID: l.runID, Artifact: artifact, Mode: mode, Pass: pass, Summary: summary,
	})
	if err != nil {
		fmt.Printf("⚠️  Failed to record gate verdict: %v\n", err)
	}
}

func (l *ledger) finish(ctx context.Context, runErr error, details map[string]any) {
	if l.store == nil {
		return
	}
	status := storage.RunOK
	if runErr != nil {
		status = storage.RunFailed
	}
	if err := l.store.FinishRun(ctx, l.runID, status, details); err != nil {
		fmt.Printf("⚠️  Failed to close run: %v\n", err)
	}
	l.store.Close()
}
