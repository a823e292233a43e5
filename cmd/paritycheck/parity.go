package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"paritycheck/internal/config"
	"paritycheck/internal/fetch"
	"paritycheck/internal/legacy"
	"paritycheck/internal/match"
	"paritycheck/internal/matrix"
	"paritycheck/internal/pipeline"
	"paritycheck/internal/report"
	"paritycheck/internal/target"

	"github.com/spf13/cobra"
)

var (
	parityInventory string
	parityOutDir    string
)

func init() {
	parityCmd.Flags().StringVar(&parityInventory, "inventory", "", "Inventory markdown with | Port entries (overrides config ports)")
	parityCmd.Flags().StringVar(&parityOutDir, "out-dir", "reports/parity", "Output directory for parity artifacts")
}

var parityCmd = &cobra.Command{
	Use:   "parity",
	Short: "Fetch upstream sources, match symbols against the target tree, emit the parity CSV",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		cfg := loadConfig()
		led := beginRun(ctx, "parity")
		rep := pipeline.NewReport("parity")

		slug, err := fetch.NormalizeRepo(cfg.Upstream.Repo)
		if err != nil {
			log.Fatalf("Failed to parse upstream repo: %v", err)
		}

		commit := cfg.Upstream.Commit
		if commit == "" {
			fmt.Printf("🔎 Resolving %s@%s...\n", slug, cfg.Upstream.Tag)
			commit, err = fetch.ResolveGitRef(slug, cfg.Upstream.Tag)
			if err != nil {
				log.Fatalf("Failed to resolve upstream ref: %v", err)
			}
		}
		fmt.Printf("📌 Upstream pinned at %s\n", commit)

		fmt.Printf("📂 Scanning target tree %s (%s)...\n", cfg.Target.Root, cfg.Target.Language)
		h := rep.BeginStage("scan-target")
		scanner, err := target.NewScanner(cfg.Target.Language)
		if err != nil {
			log.Fatalf("Failed to create target scanner: %v", err)
		}
		idx, err := scanner.ScanTree(cfg.Target.Root)
		if err != nil {
			rep.EndStage(h, nil, nil, err)
			led.finish(ctx, err, nil)
			log.Fatalf("Failed to scan target tree: %v", err)
		}
		rep.EndStage(h, map[string]float64{"files": float64(len(idx.ByFile))}, nil, nil)
		fmt.Printf("✅ Indexed %d target files\n", len(idx.ByFile))

		ports := cfg.Ports
		if parityInventory != "" {
			ports, err = config.LoadPortsFromInventory(parityInventory)
			if err != nil {
				log.Fatalf("Failed to load inventory %s: %v", parityInventory, err)
			}
			fmt.Printf("📋 Loaded %d port entries from inventory\n", len(ports))
		}
		if len(ports) == 0 {
			log.Fatalf("No port entries configured; set ports in %s or pass --inventory", configPath)
		}

		matcher := match.NewMatcher(idx, cfg.Mappings, cfg.Aliases, cfg.Architectural)
		fetcher := fetch.NewGitHubFetcher(cfg.CacheDir)
		up := match.Upstream{
			Repo:   cfg.Upstream.Repo,
			Subdir: cfg.Upstream.Subdir,
			Ref:    cfg.Upstream.Tag,
			Commit: commit,
		}

		h = rep.BeginStage("fetch-and-match")
		start := time.Now()
		rows := buildParityRows(matcher, fetcher, up, slug, ports)
		rep.EndStage(h, map[string]float64{"rows": float64(len(rows))}, nil, nil)
		fmt.Printf("✅ Matched %d upstream symbols in %v\n", len(rows), time.Since(start))

		functionsCSV := filepath.Join(parityOutDir, "functions.csv")
		missingCSV := filepath.Join(parityOutDir, "missing.csv")
		reviewCSV := filepath.Join(parityOutDir, "needs_review.csv")
		gapsMD := filepath.Join(parityOutDir, "gaps.md")

		h = rep.BeginStage("write-artifacts")
		err = writeAll(
			func() error { return matrix.WriteParityCSV(functionsCSV, rows) },
			func() error { return report.WriteStatusCSV(missingCSV, rows, matrix.StatusMissing) },
			func() error { return report.WriteStatusCSV(reviewCSV, rows, matrix.StatusNeedsReview) },
			func() error { return report.WriteMarkdown(gapsMD, report.ParityGaps(up, rows)) },
		)
		rep.EndStage(h, nil, []string{functionsCSV, missingCSV, reviewCSV, gapsMD}, err)
		if err != nil {
			led.finish(ctx, err, nil)
			log.Fatalf("Failed to write parity artifacts: %v", err)
		}

		led.artifact(ctx, "functions_csv", functionsCSV)
		led.artifact(ctx, "gaps_md", gapsMD)
		led.finish(ctx, nil, map[string]any{"rows": len(rows), "ports": len(ports)})
		if err := rep.Save(filepath.Join(parityOutDir, "pipeline_report.json")); err != nil {
			fmt.Printf("⚠️  Failed to save pipeline report: %v\n", err)
		}
		fmt.Printf("🎉 Parity report written to %s\n", parityOutDir)
	},
}

// buildParityRows fetches every port file at the pinned commit, extracts its
// legacy symbols, and matches them basename by basename.
func buildParityRows(matcher *match.Matcher, fetcher fetch.Fetcher, up match.Upstream, slug string, ports []config.PortEntry) []matrix.ParityRow {
	order := []string{}
	grouped := map[string][]string{}
	for _, port := range ports {
		basename := port.Basename
		if basename == "" {
			basename = config.BasenameOf(port.Path)
		}
		if _, ok := grouped[basename]; !ok {
			order = append(order, basename)
		}
		grouped[basename] = append(grouped[basename], port.Path)
	}

	var rows []matrix.ParityRow
	for _, basename := range order {
		var sources []match.SourceSymbols
		for _, rel := range grouped[basename] {
			// FetchFile returns the cached file's path, not its contents.
			path, err := fetcher.FetchFile(slug, up.Subdir, up.Commit, rel)
			if err != nil {
				sources = append(sources, match.SourceSymbols{Path: rel, FetchErr: err})
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				sources = append(sources, match.SourceSymbols{Path: rel, FetchErr: err})
				continue
			}
			syms := legacy.ExtractSymbols(string(data), rel, basename, legacy.IsSourceFile(rel))
			sources = append(sources, match.SourceSymbols{Path: rel, Symbols: syms})
		}
		rows = append(rows, matcher.BuildRows(up, basename, sources)...)
	}
	return rows
}

func writeAll(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
