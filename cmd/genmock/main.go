// Command genmock writes a deterministic road and hazard fixture. Roads are
// scored with the service's own domain rules so the fixture can seed a
// database or drive load tests against the API.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/delhi_roads.json -roads 50 -hazards 200
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"github.com/couchcryptid/road-safety-service/internal/domain"
	"github.com/couchcryptid/road-safety-service/internal/mockdata"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the JSON fixture")
	seed := flag.Int64("seed", 42, "random seed")
	roads := flag.Int("roads", 50, "number of roads")
	hazards := flag.Int("hazards", 200, "number of hazard reports")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	f, err := mockdata.Generate(mockdata.Options{Seed: *seed, Roads: *roads, Hazards: *hazards})
	if err != nil {
		return fmt.Errorf("generating fixture: %w", err)
	}
	if err := mockdata.Write(*out, f); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s (%d roads, %d hazards)", *out, len(f.Roads), len(f.Hazards))

	printStats(f)
	return nil
}

type regionCount struct {
	region string
	count  int
}

func printStats(f mockdata.Fixture) {
	tiers := map[domain.SafetyLevel]int{}
	regions := map[string]int{}
	for _, r := range f.Roads {
		tiers[domain.Classify(float64(r.SafetyScore)).Level]++
		regions[r.Region]++
	}

	located := 0
	for _, h := range f.Hazards {
		if h.HasCoords() {
			located++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Roads: %d\n", len(f.Roads))
	fmt.Printf("By tier: High=%d, Medium=%d, Low=%d\n",
		tiers[domain.SafetyLevelHigh], tiers[domain.SafetyLevelMedium], tiers[domain.SafetyLevelLow])
	fmt.Printf("Hazards: %d (%d located)\n", len(f.Hazards), located)

	rc := make([]regionCount, 0, len(regions))
	for r, c := range regions {
		rc = append(rc, regionCount{r, c})
	}
	sort.Slice(rc, func(i, j int) bool {
		if rc[i].count != rc[j].count {
			return rc[i].count > rc[j].count
		}
		return rc[i].region < rc[j].region
	})
	fmt.Printf("Regions (%d): ", len(rc))
	for _, r := range rc {
		fmt.Printf("%s=%d ", r.region, r.count)
	}
	fmt.Println()

	if len(f.Roads) > 0 {
		first := f.Roads[0]
		fmt.Printf("\nFirst road: %s (score %d, %s)\n", first.RoadName, first.SafetyScore, first.RoadCondition)
	}
}
