package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/noah-isme/exam-adp-api/internal/passcalc"
)

// fixture pairs one engine input with the outcome the legacy platform
// produced for it. Used to cross-check the Go engine against exported
// legacy calculation results during migration.
type fixture struct {
	Name       string         `json:"name"`
	Input      passcalc.Input `json:"input"`
	FinalScore *float64       `json:"final_score"`
	Passed     *bool          `json:"passed"`
}

func main() {
	var (
		fixturesPath string
		verbose      bool
	)

	flag.StringVar(&fixturesPath, "fixtures", filepath.Join("scripts", "verify_scores", "fixtures.json"), "Path to JSON fixtures file")
	flag.BoolVar(&verbose, "verbose", false, "Print every comparison, not just mismatches")
	flag.Parse()

	fixtures, err := loadFixtures(fixturesPath)
	if err != nil {
		log.Fatalf("failed to load fixtures: %v", err)
	}

	mismatches := 0
	for _, f := range fixtures {
		result := passcalc.Calculate(f.Input)
		if !result.Success {
			mismatches++
			fmt.Printf("FAIL %s: engine rejected input: %v\n", f.Name, result.Errors)
			continue
		}
		if !floatsEqual(result.FinalScore, f.FinalScore) || !boolsEqual(result.Passed, f.Passed) {
			mismatches++
			fmt.Printf("FAIL %s: got final=%s passed=%s, legacy final=%s passed=%s\n",
				f.Name, fmtFloat(result.FinalScore), fmtBool(result.Passed), fmtFloat(f.FinalScore), fmtBool(f.Passed))
			continue
		}
		if verbose {
			fmt.Printf("OK   %s: final=%s passed=%s\n", f.Name, fmtFloat(result.FinalScore), fmtBool(result.Passed))
		}
	}

	fmt.Printf("checked %d fixtures, %d mismatches\n", len(fixtures), mismatches)
	if mismatches > 0 {
		os.Exit(1)
	}
}

func loadFixtures(path string) ([]fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fixtures []fixture
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return fixtures, nil
}

func floatsEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	diff := *a - *b
	return diff < 0.005 && diff > -0.005
}

func boolsEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func fmtFloat(v *float64) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%.2f", *v)
}

func fmtBool(v *bool) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%t", *v)
}
