package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/manifold-nav/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath))
}

func run(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	results, err := replay.Replay(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	comparisons, summary := replay.Compare(results, f.Expected)
	printComparison(comparisons, summary)

	if summary.Diverged > 0 {
		return 1
	}
	return 0
}

// #endregion main

// #region output

func printComparison(comparisons []replay.Comparison, summary replay.Summary) {
	fmt.Printf("%-12s| %-15s| %-15s| %s\n", "Sign", "Expected", "Replayed", "Match")
	fmt.Printf("%-12s+%-15s+%-15s+%s\n",
		"------------", "----------------", "----------------", "------")

	for _, c := range comparisons {
		match := "DIFF"
		if c.Match {
			match = "OK"
		}
		fmt.Printf("%-12s| %-15s| %-15s| %s\n", c.SignID, c.Expected, c.Replayed, match)
	}

	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n",
		summary.Total, summary.Matches, summary.Diverged)
}

// #endregion output
