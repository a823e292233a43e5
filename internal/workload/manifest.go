package workload

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var manifestSchema string

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// Reference pins the legacy implementation the workloads run against.
type Reference struct {
	Repo   string `json:"repo"`
	Subdir string `json:"subdir"`
	Tag    string `json:"tag"`
	Commit string `json:"commit"`
}

// Workload is one named differential scenario with its tolerance spec.
// Optional tolerance keys enable the corresponding comparison, so presence
// matters and the map is kept as-is.
type Workload struct {
	ID         string             `json:"id"`
	Tolerances map[string]float64 `json:"tolerances"`
}

// Manifest is the workload manifest document.
type Manifest struct {
	Reference Reference  `json:"reference"`
	Workloads []Workload `json:"workloads"`
}

// IDs returns the workload ids in manifest order.
func (m *Manifest) IDs() []string {
	out := make([]string, 0, len(m.Workloads))
	for _, w := range m.Workloads {
		out = append(out, w.ID)
	}
	return out
}

// LoadManifest reads and schema-validates a workload manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workload manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest validates raw manifest bytes against the embedded schema.
func ParseManifest(data []byte) (*Manifest, error) {
	schema, err := loadSchema()
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse workload manifest: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("workload manifest is invalid: %w", err)
	}

	var m Manifest
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode workload manifest: %w", err)
	}

	seen := map[string]bool{}
	for _, w := range m.Workloads {
		if seen[w.ID] {
			return nil, fmt.Errorf("duplicate workload id: %s", w.ID)
		}
		seen[w.ID] = true
	}
	return &m, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("workloads.schema.json", bytes.NewReader([]byte(manifestSchema))); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("workloads.schema.json")
	})
	return compiledSchema, schemaErr
}
