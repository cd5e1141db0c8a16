// Package report renders a benchmark result tree into a Markdown
// comparison document. Each table row shows the best run of one
// variant: the concurrency level that achieved the highest rps.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kianmeng/granian/results"
)

// Section titles fixed by the published report layout.
var categoryTitles = map[string]string{
	results.CategoryRSGIBody: "RSGI response types",
	results.CategoryRSGIASGI: "RSGI vs ASGI",
	results.CategoryUvicorn:  "Granian vs Uvicorn",
}

const (
	groupHeader = "| Type | Concurrency | Total requests " +
		"| RPS | avg latency | max latency |"
	sweepHeader = "| Mode | Concurrency | Total requests " +
		"| RPS | avg latency | max latency |"
	tableRule = "|------|-------------|----------------" +
		"|-----|-------------|-------------|"
)

// Generate renders doc as Markdown into w. The document is assembled
// in memory and flushed only on success, so an error never leaves
// partial output behind.
func Generate(w io.Writer, doc *results.Document) error {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "# Benchmarks report")
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Run at: %s\n", doc.Meta.RunAt)
	fmt.Fprintf(&buf, "CPU: %s\n", doc.Meta.CPU)

	for _, category := range results.MandatoryCategories {
		group, ok := doc.Tree.Categories[category]
		if !ok {
			return &results.MissingCategoryError{Category: category}
		}

		if err := writeGroup(&buf, category, group); err != nil {
			return err
		}
	}

	if doc.Tree.Sweep != nil {
		if err := writeSweep(&buf, doc.Tree.Sweep); err != nil {
			return err
		}
	}

	_, err := w.Write(buf.Bytes())

	return err
}

func writeGroup(
	buf *bytes.Buffer,
	category string,
	group results.VariantGroup,
) error {
	fmt.Fprintln(buf)
	fmt.Fprintf(buf, "## %s\n", categoryTitles[category])
	fmt.Fprintln(buf)
	fmt.Fprintln(buf, groupHeader)
	fmt.Fprintln(buf, tableRule)

	for _, label := range group.Labels {
		set := group.Sets[label]
		if len(set) == 0 {
			return &results.EmptyRunSetError{
				Category: category, Label: label,
			}
		}

		level, run, err := BestRun(set)
		if err != nil {
			return err
		}

		writeRow(buf, label, level, run)
	}

	return nil
}

func writeSweep(buf *bytes.Buffer, sweep results.Sweep) error {
	fmt.Fprintln(buf)
	fmt.Fprintln(buf, "## Concurrencies")

	for _, iface := range results.SweepInterfaces {
		entry, ok := sweep[iface]
		if !ok {
			continue
		}

		fmt.Fprintln(buf)
		fmt.Fprintf(buf, "### %s\n", strings.ToUpper(iface))
		fmt.Fprintln(buf)
		fmt.Fprintln(buf, sweepHeader)
		fmt.Fprintln(buf, tableRule)

		for _, label := range entry.Labels {
			for _, mode := range results.ThreadingModes {
				set, ok := entry.Runs[label][mode]
				if !ok {
					continue
				}

				if len(set) == 0 {
					return &results.EmptyRunSetError{
						Category: results.CategorySweep,
						Label:    label + " " + mode,
					}
				}

				level, run, err := BestRun(set)
				if err != nil {
					return err
				}

				writeRow(buf, label+" "+mode, level, run)
			}
		}
	}

	return nil
}

func writeRow(
	buf *bytes.Buffer,
	label, level string,
	run results.RunResult,
) {
	fmt.Fprintf(buf, "| %s | c%s | %d | %s | %s | %s |\n",
		label, level,
		run.Requests.Total,
		formatRPS(run.Requests.RPS),
		formatLatency(run.Latency.Avg),
		formatLatency(run.Latency.Max),
	)
}

// formatRPS keeps the throughput value as-is: no padding, no rounding,
// integral values without a trailing ".0".
func formatRPS(rps float64) string {
	return strconv.FormatFloat(rps, 'f', -1, 64)
}

// formatLatency converts microseconds to whole milliseconds, truncating
// to an integer before the division.
func formatLatency(us float64) string {
	return fmt.Sprintf("%dms", int64(us)/1000)
}
