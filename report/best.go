package report

import (
	"sort"
	"strconv"

	"github.com/kianmeng/granian/results"
)

// BestRun returns the concurrency level whose run achieved the highest
// requests per second, together with that run. Levels are scanned in
// ascending numeric order and the scan keeps the later level on equal
// rps, so an exact tie resolves to the highest concurrency level.
func BestRun(set results.RunSet) (string, results.RunResult, error) {
	if len(set) == 0 {
		return "", results.RunResult{}, &results.EmptyRunSetError{}
	}

	levels := make([]string, 0, len(set))
	for level := range set {
		levels = append(levels, level)
	}

	sortLevels(levels)

	best := levels[0]
	for _, level := range levels[1:] {
		if set[level].Requests.RPS >= set[best].Requests.RPS {
			best = level
		}
	}

	return best, set[best], nil
}

// sortLevels orders concurrency levels numerically when both sides
// parse as integers, lexicographically otherwise.
func sortLevels(levels []string) {
	sort.Slice(levels, func(i, j int) bool {
		a, aErr := strconv.Atoi(levels[i])
		b, bErr := strconv.Atoi(levels[j])

		if aErr == nil && bErr == nil {
			return a < b
		}

		return levels[i] < levels[j]
	})
}
