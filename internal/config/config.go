package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config drives one verification run: where the upstream library lives, which
// legacy files are in scope, and how basenames map onto target source files.
type Config struct {
	Upstream struct {
		Repo   string `yaml:"repo"`   // GitHub slug or URL, e.g. root-project/root
		Subdir string `yaml:"subdir"` // subtree within the repo, e.g. math/minuit2
		Tag    string `yaml:"tag"`    // resolved when commit is empty
		Commit string `yaml:"commit"` // pinned SHA, overrides tag
	} `yaml:"upstream"`

	Target struct {
		Root     string `yaml:"root"`     // target source tree root, e.g. src
		Language string `yaml:"language"` // "rust" or "go"
	} `yaml:"target"`

	CacheDir string `yaml:"cache_dir"`

	// Ports lists the legacy files in scope. Entries without an explicit
	// basename derive it from the file name.
	Ports []PortEntry `yaml:"ports"`

	// Mappings is the manual basename -> target files table.
	Mappings map[string][]string `yaml:"mappings"`

	// Aliases holds per-basename symbol alias overrides for naming drift,
	// e.g. GradientNCycles -> grad_ncycles.
	Aliases map[string]map[string][]string `yaml:"aliases"`

	// Architectural lists basenames where no 1:1 symbol mapping is expected.
	Architectural []string `yaml:"architectural"`
}

// PortEntry declares one legacy source file in scope for parity.
type PortEntry struct {
	Path     string `yaml:"path"`
	Basename string `yaml:"basename,omitempty"`
}

// LoadConfig reads the YAML config and applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	// Load .env if present
	_ = godotenv.Load()

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	// Override with environment variables if present
	if repo := os.Getenv("PARITYCHECK_UPSTREAM_REPO"); repo != "" {
		cfg.Upstream.Repo = repo
	}
	if commit := os.Getenv("PARITYCHECK_UPSTREAM_COMMIT"); commit != "" {
		cfg.Upstream.Commit = commit
	}
	if cache := os.Getenv("PARITYCHECK_CACHE_DIR"); cache != "" {
		cfg.CacheDir = cache
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Target.Root == "" {
		c.Target.Root = "src"
	}
	if c.Target.Language == "" {
		c.Target.Language = "rust"
	}
	if c.CacheDir == "" {
		c.CacheDir = ".cache/parity"
	}
	if c.Mappings == nil {
		c.Mappings = map[string][]string{}
	}
	if c.Aliases == nil {
		c.Aliases = map[string]map[string][]string{}
	}
}

// IsArchitectural reports whether the basename is on the allow-list of
// classes where no 1:1 symbol mapping is expected.
func (c *Config) IsArchitectural(basename string) bool {
	for _, b := range c.Architectural {
		if b == basename {
			return true
		}
	}
	return false
}
