// Package report renders the human-readable verification artifacts:
// markdown summaries next to every CSV so a reviewer can triage without
// reopening the raw data.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// WriteMarkdown writes a rendered summary, creating parent directories.
func WriteMarkdown(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

type fileCount struct {
	File  string
	Count int
}

// topCounts ranks files by descending count, ties broken by path, bounded
// to limit entries.
func topCounts(counts map[string]int, limit int) []fileCount {
	ranked := make([]fileCount, 0, len(counts))
	for file, count := range counts {
		ranked = append(ranked, fileCount{File: file, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].File < ranked[j].File
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
