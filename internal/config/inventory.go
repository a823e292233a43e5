package config

import (
	"os"
	"regexp"
	"strings"
)

var (
	inventoryLinkRe = regexp.MustCompile(`\[([^\]]+)\]`)
	sourceSuffixRe  = regexp.MustCompile(`\.(h|hpp|cxx)$`)
)

// LoadPortsFromInventory parses "| Port" rows out of an inventory markdown
// table and returns the referenced upstream files as port entries. Only
// inc/ and src/ paths are considered; exact duplicates are dropped while
// preserving insertion order.
func LoadPortsFromInventory(path string) ([]PortEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ports []PortEntry
	seen := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.Contains(line, "| Port") {
			continue
		}
		m := inventoryLinkRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rel := strings.TrimSpace(m[1])
		if !strings.HasPrefix(rel, "inc/") && !strings.HasPrefix(rel, "src/") {
			continue
		}
		if seen[rel] {
			continue
		}
		seen[rel] = true
		ports = append(ports, PortEntry{Path: rel, Basename: BasenameOf(rel)})
	}
	return ports, nil
}

// BasenameOf derives the entity basename from an upstream file path by
// stripping the directory and the C++ source suffix.
func BasenameOf(rel string) string {
	parts := strings.Split(rel, "/")
	return sourceSuffixRe.ReplaceAllString(parts[len(parts)-1], "")
}
