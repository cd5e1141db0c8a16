package sample

import (
	"bytes"
	"testing"

	"github.com/kianmeng/granian/report"
	"github.com/kianmeng/granian/results"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := Config{
		Seed:      42,
		Levels:    []int{16, 64, 256},
		WithSweep: true,
	}

	var buf1, buf2 bytes.Buffer

	gen1 := NewGenerator(cfg)
	sum1, err := gen1.Generate(&buf1)
	if err != nil {
		t.Fatalf("first generation failed: %v", err)
	}

	gen2 := NewGenerator(cfg)
	sum2, err := gen2.Generate(&buf2)
	if err != nil {
		t.Fatalf("second generation failed: %v", err)
	}

	if buf1.String() != buf2.String() {
		t.Error("documents are not deterministic for same seed")
	}

	if sum1 != sum2 {
		t.Errorf("summaries differ: %+v vs %+v", sum1, sum2)
	}
}

func TestGenerateCounts(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantCats  int
		wantVars  int
		wantRuns  int
		wantSweep bool
	}{
		{
			name:     "mandatory only",
			cfg:      Config{Seed: 1, Levels: []int{16, 64}},
			wantCats: 3,
			wantVars: 12,
			wantRuns: 24,
		},
		{
			name: "with sweep",
			cfg: Config{
				Seed: 1, Levels: []int{16, 64}, WithSweep: true,
			},
			wantCats:  4,
			wantVars:  24,
			wantRuns:  48,
			wantSweep: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			sum, err := NewGenerator(tt.cfg).Generate(&buf)
			if err != nil {
				t.Fatalf("generation failed: %v", err)
			}

			if sum.Categories != tt.wantCats {
				t.Errorf("categories = %d, want %d",
					sum.Categories, tt.wantCats)
			}
			if sum.Variants != tt.wantVars {
				t.Errorf("variants = %d, want %d",
					sum.Variants, tt.wantVars)
			}
			if sum.Runs != tt.wantRuns {
				t.Errorf("runs = %d, want %d", sum.Runs, tt.wantRuns)
			}

			doc, err := results.Load(&buf)
			if err != nil {
				t.Fatalf("generated document does not load: %v", err)
			}

			if got := doc.Tree.Sweep != nil; got != tt.wantSweep {
				t.Errorf("sweep present = %v, want %v", got, tt.wantSweep)
			}
		})
	}
}

func TestGeneratedDocumentRenders(t *testing.T) {
	var buf bytes.Buffer

	cfg := Config{Seed: 7, WithSweep: true}
	if _, err := NewGenerator(cfg).Generate(&buf); err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	doc, err := results.Load(&buf)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	var md bytes.Buffer
	if err := report.Generate(&md, doc); err != nil {
		t.Fatalf("report generation failed: %v", err)
	}

	if md.Len() == 0 {
		t.Error("expected a non-empty report")
	}
}
