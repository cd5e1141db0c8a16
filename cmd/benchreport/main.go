// Package main provides the CLI entry point for benchreport, a
// Markdown report generator for HTTP-server benchmark results.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/fsnotify/fsnotify"
	"github.com/kianmeng/granian/report"
	"github.com/kianmeng/granian/results"
	"github.com/kianmeng/granian/sample"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	root := newRootCmd(logger)
	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "benchreport",
		Short: "Markdown report generator for HTTP-server benchmark results",
		Long: `Benchreport turns the JSON results of an HTTP-server benchmark
run into a Markdown comparison document. For every benchmark variant it
selects the concurrency level with the highest requests per second and
reports its request count, rps and latency statistics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRenderCmd(logger))
	root.AddCommand(newSampleCmd(logger))

	return root
}

type renderConfig struct {
	input  string
	output string
	pretty bool
	watch  bool
}

func newRenderCmd(logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render benchmark results into a Markdown report",
		Long: `Read a benchmark results JSON document and write the Markdown
comparison report. Every flag can also be set through a BENCHREPORT_*
environment variable (e.g. BENCHREPORT_INPUT), which is how CI runs it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.New()
			v.SetEnvPrefix("BENCHREPORT")
			v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			v.AutomaticEnv()

			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("bind flags: %w", err)
			}

			cfg := renderConfig{
				input:  v.GetString("input"),
				output: v.GetString("output"),
				pretty: v.GetBool("pretty"),
				watch:  v.GetBool("watch"),
			}

			if cfg.watch {
				return watchAndRender(cmd.Context(), logger, cfg)
			}

			return renderOnce(logger, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringP("input", "i", "-",
		"Results JSON file to read (- for stdin)")
	flags.StringP("output", "o", "",
		"Markdown file to write (default: stdout)")
	flags.Bool("pretty", false,
		"Render the report for the terminal (stdout only)")
	flags.Bool("watch", false,
		"Re-render whenever the input file changes")

	return cmd
}

func renderOnce(logger *slog.Logger, cfg renderConfig) error {
	doc, err := loadDocument(cfg.input)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.Generate(&buf, doc); err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	if cfg.output != "" {
		if err := os.WriteFile(cfg.output, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}

		logger.Info("report written",
			slog.String("path", cfg.output),
			slog.Int("bytes", buf.Len()),
		)

		return nil
	}

	if cfg.pretty {
		return renderPretty(os.Stdout, buf.String())
	}

	_, err = os.Stdout.Write(buf.Bytes())

	return err
}

func loadDocument(path string) (*results.Document, error) {
	var r io.Reader = os.Stdin

	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open results: %w", err)
		}
		defer f.Close()

		r = f
	}

	doc, err := results.Load(r)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}

	return doc, nil
}

// renderPretty pipes the Markdown through a terminal renderer, falling
// back to the plain document when the renderer cannot be built.
func renderPretty(w io.Writer, markdown string) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		_, werr := io.WriteString(w, markdown)

		return werr
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		_, werr := io.WriteString(w, markdown)

		return werr
	}

	_, err = io.WriteString(w, out)

	return err
}

// watchAndRender re-renders on every write to the input file until the
// context is cancelled. Render failures are logged, not fatal: the
// next write gets another chance.
func watchAndRender(
	ctx context.Context,
	logger *slog.Logger,
	cfg renderConfig,
) error {
	if cfg.input == "-" {
		return fmt.Errorf("--watch requires a file input, not stdin")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: tools that replace the file atomically
	// would otherwise drop the watch on the first update.
	if err := watcher.Add(filepath.Dir(cfg.input)); err != nil {
		return fmt.Errorf("watch %s: %w", cfg.input, err)
	}

	if err := renderOnce(logger, cfg); err != nil {
		logger.Error("initial render failed",
			slog.String("error", err.Error()),
		)
	}

	target := filepath.Clean(cfg.input)

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch stopped")

			return nil
		case event := <-watcher.Events:
			if filepath.Clean(event.Name) != target {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if err := renderOnce(logger, cfg); err != nil {
				logger.Error("render failed",
					slog.String("error", err.Error()),
				)
			}
		case werr := <-watcher.Errors:
			logger.Warn("watch error", slog.String("error", werr.Error()))
		}
	}
}

func newSampleCmd(logger *slog.Logger) *cobra.Command {
	var (
		seed      int64
		levels    []int
		withSweep bool
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Generate a synthetic results document",
		Long: `Write a deterministic synthetic benchmark results document to
stdout, suitable for previewing the report layout with the render command.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			gen := sample.NewGenerator(sample.Config{
				Seed:      seed,
				Levels:    levels,
				WithSweep: withSweep,
			})

			summary, err := gen.Generate(os.Stdout)
			if err != nil {
				return fmt.Errorf("generate sample: %w", err)
			}

			logger.Info("sample generated",
				slog.Int("categories", summary.Categories),
				slog.Int("variants", summary.Variants),
				slog.Int("runs", summary.Runs),
			)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.Int64Var(&seed, "seed", 42,
		"Random seed for the generator")
	flags.IntSliceVar(&levels, "levels", []int{16, 64, 256},
		"Concurrency levels per run set")
	flags.BoolVar(&withSweep, "sweep", false,
		"Include the optional concurrency sweep")

	return cmd
}
