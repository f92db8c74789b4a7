// Command validate checks a road and hazard fixture against the service's
// scoring, classification, heatmap and analytics rules.
//
// Usage:
//
//	go run ./cmd/validate -fixture data/mock/delhi_roads.json
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/road-safety-service/internal/mockdata"
)

func main() {
	path := flag.String("fixture", "", "path to the JSON fixture")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*path))
}

func run(path string) int {
	fmt.Println("=== Road Safety Fixture Validation ===")
	fmt.Println()

	f, err := mockdata.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixture: %v\n", err)
		return 1
	}

	phases := mockdata.Validate(f)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.Passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.Errors))
			allPassed = false
		}
		fmt.Printf("  %-32s %s\n", p.Name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d roads, %d hazards (seed %d)\n", len(f.Roads), len(f.Hazards), f.Seed)

	for _, p := range phases {
		if p.Passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.Name)
		for i, e := range p.Errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}
