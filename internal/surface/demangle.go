package surface

import (
	"bytes"
	"os/exec"
	"strings"
)

// Demangler turns mangled legacy symbol names into readable signatures.
// Implementations must never fail the run: when demangling is impossible
// the mangled names come back verbatim.
type Demangler interface {
	Demangle(names []string) map[string]string
}

// CxxFilt batch-demangles through the c++filt binary.
type CxxFilt struct {
	// Path overrides binary lookup, mainly for tests.
	Path string
}

func (c *CxxFilt) Demangle(names []string) map[string]string {
	unique := dedupe(names)
	if len(unique) == 0 {
		return map[string]string{}
	}

	bin := c.Path
	if bin == "" {
		found, err := exec.LookPath("c++filt")
		if err != nil {
			return verbatim(unique)
		}
		bin = found
	}

	cmd := exec.Command(bin, "-n")
	cmd.Stdin = strings.NewReader(strings.Join(unique, "\n") + "\n")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return verbatim(unique)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != len(unique) {
		return verbatim(unique)
	}
	m := make(map[string]string, len(unique))
	for i, name := range unique {
		m[name] = lines[i]
	}
	return m
}

// ExtractMangledName cuts a raw coverage function entry down to its
// Itanium-mangled core, or returns it unchanged when none is present.
func ExtractMangledName(raw string) string {
	if i := strings.Index(raw, "_Z"); i >= 0 {
		return raw[i:]
	}
	return raw
}

func dedupe(names []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func verbatim(names []string) map[string]string {
	m := make(map[string]string, len(names))
	for _, n := range names {
		m[n] = n
	}
	return m
}
