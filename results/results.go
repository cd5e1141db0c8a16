// Package results defines the benchmark result tree produced by the
// benchmark runner and loads it from the runner's JSON output.
package results

import (
	"bytes"
	"encoding/json"
)

// Category keys the runner writes into the results document.
const (
	CategoryRSGIBody = "rsgi_body"
	CategoryRSGIASGI = "rsgi_asgi"
	CategoryUvicorn  = "uvicorn"
	CategorySweep    = "concurrencies"
)

// MandatoryCategories lists the categories every results document must
// carry, in the order they appear in the report.
var MandatoryCategories = []string{
	CategoryRSGIBody, CategoryRSGIASGI, CategoryUvicorn,
}

// SweepInterfaces and ThreadingModes are the fixed axes of the optional
// concurrency sweep.
var (
	SweepInterfaces = []string{"asgi", "rsgi"}
	ThreadingModes  = []string{"runtime", "workers"}
)

// Requests holds the request counters of one run.
type Requests struct {
	Total int64   `json:"total"`
	RPS   float64 `json:"rps"`
}

// Latency holds latency statistics of one run, in microseconds.
type Latency struct {
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
}

// RunResult is the outcome of a single benchmark run at one concurrency
// level.
type RunResult struct {
	Requests Requests `json:"requests"`
	Latency  Latency  `json:"latency"`
}

// RunSet maps concurrency level to the run executed at that level.
// Iteration order carries no meaning; consumers that need determinism
// must impose their own order.
type RunSet map[string]RunResult

// VariantGroup maps variant labels to their run sets. Labels keeps the
// key order of the source document, which is also the report row order.
type VariantGroup struct {
	Labels []string
	Sets   map[string]RunSet
}

// MarshalJSON writes the group as a JSON object in label order.
func (g VariantGroup) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, label := range g.Labels {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(g.Sets[label])
		if err != nil {
			return nil, err
		}

		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// SweepGroup holds one interface's concurrency-sweep results pivoted
// into label-major order: the wire layout nests mode -> label -> runs,
// the report iterates label -> mode.
type SweepGroup struct {
	Labels []string
	Runs   map[string]map[string]RunSet // label -> mode -> runs
}

// Sweep maps interface name to its sweep results.
type Sweep map[string]SweepGroup

// Tree is the full result tree for one benchmark session.
type Tree struct {
	Categories map[string]VariantGroup

	// Sweep is nil when the concurrencies category is absent.
	Sweep Sweep
}

// Metadata carries the run descriptors echoed into the report header.
// Both fields are opaque and passed through verbatim.
type Metadata struct {
	RunAt string
	CPU   string
}

// Document is one benchmark session: metadata plus the result tree.
type Document struct {
	Meta Metadata
	Tree Tree
}
