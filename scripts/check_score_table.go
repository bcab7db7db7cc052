package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"alfredoptarigan/applicant-review/internal/config"
)

// Checks that every breakdown in the score table adds up to its total.
// Usage: go run scripts/check_score_table.go [path]
func main() {
	log.Println("🚀 Checking score table...")

	cfg := config.Load()
	path := cfg.Scoring.TablePath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	table, err := config.LoadScoreTable(path)
	if err != nil {
		log.Fatalf("❌ Failed to load score table: %v", err)
	}

	names := make([]string, 0, len(table.Totals))
	for name := range table.Totals {
		names = append(names, name)
	}
	collate.New(language.Korean).SortStrings(names)

	problems := 0
	for _, name := range names {
		rows, ok := table.Breakdowns[name]
		if !ok {
			fmt.Printf("⚠️  %s: total %.0f has no breakdown\n", name, table.Totals[name])
			problems++
			continue
		}

		items := make([]string, 0, len(rows))
		var sum float64
		for item, s := range rows {
			sum += s.Score
			items = append(items, item)
			if s.Score > s.MaxScore {
				fmt.Printf("⚠️  %s: %s scores %.1f over max %.1f\n", name, item, s.Score, s.MaxScore)
			}
		}
		sort.Strings(items)

		if math.Abs(sum-table.Totals[name]) > 1e-9 {
			fmt.Printf("❌ %s: breakdown sums to %.1f, total is %.1f (%v)\n", name, sum, table.Totals[name], items)
			problems++
			continue
		}
		fmt.Printf("✅ %s: %.0f\n", name, sum)
	}

	if problems > 0 {
		log.Fatalf("❌ %d problem(s) found", problems)
	}
	log.Println("✅ Score table is consistent")
}
