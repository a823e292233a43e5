package coverage

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"paritycheck/internal/workload"
)

// Profiler drives an instrumented legacy runner through every workload and
// exports function coverage with the LLVM tool pair. Workloads run
// sequentially for reproducibility.
type Profiler struct {
	Runner       *workload.ExecRunner
	LLVMProfdata string
	LLVMCov      string
}

// Collect executes the workloads, saving raw results under rawDir, merges
// the profile data, and returns the raw llvm-cov export payload.
func (p *Profiler) Collect(ctx context.Context, ids []string, rawDir string) ([]byte, error) {
	profrawDir := filepath.Join(rawDir, "profraw")
	if err := os.RemoveAll(profrawDir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(profrawDir, 0755); err != nil {
		return nil, err
	}

	for _, id := range ids {
		runner := *p.Runner
		pattern := filepath.Join(profrawDir, fmt.Sprintf("ref_runner_%s_%%p.profraw", id))
		runner.Env = append(append([]string(nil), p.Runner.Env...), "LLVM_PROFILE_FILE="+pattern)
		out, err := runner.Run(ctx, id)
		if err != nil {
			return nil, err
		}
		if _, err := workload.SaveRaw(rawDir, id, out); err != nil {
			return nil, err
		}
	}

	profraws, err := filepath.Glob(filepath.Join(profrawDir, "*.profraw"))
	if err != nil {
		return nil, err
	}
	if len(profraws) == 0 {
		return nil, fmt.Errorf("no .profraw files produced under %s", profrawDir)
	}
	sort.Strings(profraws)

	merged := filepath.Join(rawDir, "merged.profdata")
	mergeArgs := append([]string{"merge", "-sparse"}, profraws...)
	mergeArgs = append(mergeArgs, "-o", merged)
	if out, err := exec.CommandContext(ctx, p.LLVMProfdata, mergeArgs...).CombinedOutput(); err != nil {
		return nil, fmt.Errorf("llvm-profdata merge failed: %w: %s", err, out)
	}

	export, err := exec.CommandContext(ctx, p.LLVMCov, "export", p.Runner.Bin, "-instr-profile="+merged).Output()
	if err != nil {
		return nil, fmt.Errorf("llvm-cov export failed: %w", err)
	}

	exportPath := filepath.Join(rawDir, "llvm_cov_export.json")
	if err := os.WriteFile(exportPath, export, 0644); err != nil {
		return nil, err
	}
	return export, nil
}
