// Package sample generates deterministic synthetic benchmark result
// documents, used to preview the report layout without running the
// full benchmark suite.
package sample

import (
	"encoding/json"
	"fmt"
	"io"
	mrand "math/rand"
	"strconv"

	"github.com/kianmeng/granian/results"
)

// Config controls sample generation parameters. The same seed always
// produces the same document.
type Config struct {
	Seed      int64
	Levels    []int
	WithSweep bool
}

// Summary contains statistics about the generated document.
type Summary struct {
	Categories int
	Variants   int
	Runs       int
}

// Variant labels per category, matching the shape of real runner output.
var categoryVariants = map[string][]string{
	results.CategoryRSGIBody: {
		"bytes small", "bytes big", "str small", "str big",
	},
	results.CategoryRSGIASGI: {
		"RSGI bytes", "RSGI str", "ASGI bytes", "ASGI str",
	},
	results.CategoryUvicorn: {
		"Granian RSGI", "Granian ASGI", "Uvicorn h11", "Uvicorn httptools",
	},
}

var sweepLabels = []string{"x0.5", "x1", "x2"}

// Generator produces deterministic result documents from a Config.
type Generator struct {
	cfg Config
	rng *mrand.Rand
}

// NewGenerator creates a Generator from the given Config.
func NewGenerator(cfg Config) *Generator {
	if len(cfg.Levels) == 0 {
		cfg.Levels = []int{16, 64, 256}
	}

	return &Generator{
		cfg: cfg,
		rng: mrand.New(mrand.NewSource(cfg.Seed)),
	}
}

// Generate writes a JSON results document to w and returns a Summary.
func (g *Generator) Generate(w io.Writer) (Summary, error) {
	var summary Summary

	doc := &results.Document{
		Meta: results.Metadata{
			RunAt: fmt.Sprintf("sample seed=%d", g.cfg.Seed),
			CPU:   "synthetic 8-core",
		},
		Tree: results.Tree{
			Categories: make(
				map[string]results.VariantGroup, len(categoryVariants),
			),
		},
	}

	for _, category := range results.MandatoryCategories {
		group := results.VariantGroup{
			Sets: make(map[string]results.RunSet),
		}

		for _, label := range categoryVariants[category] {
			group.Labels = append(group.Labels, label)
			group.Sets[label] = g.runSet(&summary)
			summary.Variants++
		}

		doc.Tree.Categories[category] = group
		summary.Categories++
	}

	if g.cfg.WithSweep {
		doc.Tree.Sweep = g.sweep(&summary)
		summary.Categories++
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(doc); err != nil {
		return summary, fmt.Errorf("encode sample document: %w", err)
	}

	return summary, nil
}

// runSet draws one run per configured concurrency level. All draws
// happen in slice order so the output stays seed-deterministic.
func (g *Generator) runSet(summary *Summary) results.RunSet {
	set := make(results.RunSet, len(g.cfg.Levels))
	base := 20000 + g.rng.Float64()*80000

	for _, level := range g.cfg.Levels {
		rps := base * (0.7 + g.rng.Float64()*0.6)

		set[strconv.Itoa(level)] = results.RunResult{
			Requests: results.Requests{
				Total: int64(rps * 10),
				RPS:   float64(int64(rps*10)) / 10,
			},
			Latency: results.Latency{
				Avg: float64(g.rng.Intn(40_000)),
				Max: float64(40_000 + g.rng.Intn(400_000)),
			},
		}

		summary.Runs++
	}

	return set
}

func (g *Generator) sweep(summary *Summary) results.Sweep {
	sweep := make(results.Sweep, len(results.SweepInterfaces))

	for _, iface := range results.SweepInterfaces {
		entry := results.SweepGroup{
			Runs: make(map[string]map[string]results.RunSet),
		}

		for _, label := range sweepLabels {
			entry.Labels = append(entry.Labels, label)

			modes := make(
				map[string]results.RunSet, len(results.ThreadingModes),
			)
			for _, mode := range results.ThreadingModes {
				modes[mode] = g.runSet(summary)
				summary.Variants++
			}

			entry.Runs[label] = modes
		}

		sweep[iface] = entry
	}

	return sweep
}
