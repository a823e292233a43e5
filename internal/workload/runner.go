package workload

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Result is the JSON document a runner prints for one workload.
type Result struct {
	Valid         bool        `json:"valid"`
	Fval          float64     `json:"fval"`
	Edm           float64     `json:"edm"`
	Params        []float64   `json:"params"`
	Errors        []float64   `json:"errors,omitempty"`
	HasCovariance bool        `json:"has_covariance"`
	Covariance    [][]float64 `json:"covariance,omitempty"`
	HasMinos      bool        `json:"has_minos"`
	Minos         *Minos      `json:"minos,omitempty"`
	Nfcn          float64     `json:"nfcn"`
}

// Minos holds the asymmetric interval for the scanned parameter.
type Minos struct {
	Valid bool    `json:"valid"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// ParseResult decodes a runner's stdout. Malformed JSON is fatal; the
// surrounding run cannot proceed without a comparable result.
func ParseResult(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse runner result: %w", err)
	}
	return &r, nil
}

// Runner executes one workload and returns the raw result JSON.
type Runner interface {
	Run(ctx context.Context, workloadID string) ([]byte, error)
}

// ExecRunner invokes an external runner binary with `--workload <id>`.
type ExecRunner struct {
	Bin  string
	Args []string
	Dir  string
	Env  []string
}

func (r *ExecRunner) Run(ctx context.Context, workloadID string) ([]byte, error) {
	args := append(append([]string(nil), r.Args...), "--workload", workloadID)
	cmd := exec.CommandContext(ctx, r.Bin, args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run workload %s: %w", workloadID, err)
	}
	return []byte(strings.TrimSpace(string(out))), nil
}

// SaveRaw persists one raw runner result under dir/<id>.json, re-indented
// with sorted keys for stable diffs.
func SaveRaw(dir, workloadID string, data []byte) (string, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("failed to parse raw result for %s: %w", workloadID, err)
	}
	pretty, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, workloadID+".json")
	if err := os.WriteFile(path, append(pretty, '\n'), 0644); err != nil {
		return "", err
	}
	return path, nil
}
