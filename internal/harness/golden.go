package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// GoldenDir is where snapshots live, relative to the scenario files.
const GoldenDir = "golden"

// Snapshot renders the generated SQL of a result, one block per case and
// dialect. Failed generations record only the error kind so snapshots do not
// depend on message wording.
func Snapshot(r *Result) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "-- scenario: %s\n", r.Scenario)
	for _, o := range r.Outcomes {
		fmt.Fprintf(&buf, "\n-- %s [%s]\n", o.Case, o.Dialect)
		if o.ErrorKind != "" {
			fmt.Fprintf(&buf, "-- error: %s\n", o.ErrorKind)
			continue
		}
		buf.WriteString(o.SQL)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// GoldenPath returns the snapshot path for a scenario file.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, GoldenDir, name+".golden")
}

// WriteGolden writes the snapshot of result next to scenarioFile.
func WriteGolden(scenarioFile string, result *Result) error {
	goldenPath := GoldenPath(scenarioFile)

	// Ensure golden directory exists
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(goldenPath, Snapshot(result), 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the snapshot of result matches the golden
// file of scenarioFile. The first result is false with a nil error when no
// golden file exists; exists tells the two apart.
func CompareGolden(scenarioFile string, result *Result) (match, exists bool, err error) {
	goldenData, err := os.ReadFile(GoldenPath(scenarioFile))
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(goldenData, Snapshot(result)), true, nil
}

// AssertGolden compares the snapshot of result against
// testdata/scenarios/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Join("testdata", "scenarios", GoldenDir)),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(result))
}
