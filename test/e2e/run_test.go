package e2e

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/you-not-fish/rcfg/internal/cfg"
	"github.com/you-not-fish/rcfg/internal/cfg/passes"
	"github.com/you-not-fish/rcfg/internal/fixture"
)

// TestE2E runs end-to-end tests for all .yaml fixtures in testdata/.
// Each test:
//  1. Loads the fixture: YAML → types → graphs
//  2. Runs the default pass pipeline with verification around every pass
//  3. Checks dominance and reference-count balance on the result
//  4. Compares the rendering against the .golden file
func TestE2E(t *testing.T) {
	testFiles, err := filepath.Glob("testdata/*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(testFiles) == 0 {
		t.Fatal("no .yaml test files found in testdata/")
	}

	for _, testFile := range testFiles {
		name := strings.TrimSuffix(filepath.Base(testFile), ".yaml")
		t.Run(name, func(t *testing.T) {
			runE2ETest(t, testFile)
		})
	}
}

// runE2ETest runs a single end-to-end test.
func runE2ETest(t *testing.T, fixtureFile string) {
	t.Helper()

	goldenFile := strings.TrimSuffix(fixtureFile, ".yaml") + ".golden"
	expected, err := os.ReadFile(goldenFile)
	if err != nil {
		t.Fatalf("reading golden file: %v", err)
	}

	m, err := fixture.Load(fixtureFile)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	conf := passes.Config{
		Verify: true,
		Out:    io.Discard,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	var out bytes.Buffer
	for i, c := range m.Funcs {
		if err := passes.Run(c, passes.All, conf); err != nil {
			t.Fatalf("%s: passes: %v", c.Name, err)
		}
		if err := cfg.VerifyDom(c); err != nil {
			t.Fatalf("%s: %v", c.Name, err)
		}
		report := cfg.CheckBalance(c, cfg.BalanceOptions{})
		if !report.OK() {
			t.Fatalf("%s: unbalanced after passes: %v", c.Name, report.Imbalances)
		}

		if i > 0 {
			out.WriteString("\n\n")
		}
		cfg.Fprint(&out, c)
	}
	out.WriteString("\n")

	if got := out.String(); got != string(expected) {
		t.Errorf("output mismatch for %s\n--- got ---\n%s\n--- want ---\n%s", fixtureFile, got, expected)
	}
}
