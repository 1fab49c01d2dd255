package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pdiddy/journal-engine/internal/index"
)

func TestPrintResults(t *testing.T) {
	results := []index.Result{
		{
			ID:      "id-1",
			Title:   "Deep Residual Learning",
			Journal: "IEEE Transactions on Pattern Analysis",
			Year:    "2016",
			DOI:     "10.1109/tpami.2016.0001",
			Score:   0.912,
		},
		{
			ID:    "id-2",
			Title: "Untracked Preprint",
			Score: 0.455,
		},
	}

	var buf bytes.Buffer
	printResults(&buf, results)
	out := buf.String()

	if !strings.Contains(out, " 1. [0.912] Deep Residual Learning") {
		t.Errorf("missing first hit line in output:\n%s", out)
	}
	if !strings.Contains(out, "IEEE Transactions on Pattern Analysis (2016)") {
		t.Errorf("missing journal/year line in output:\n%s", out)
	}
	if !strings.Contains(out, "https://doi.org/10.1109/tpami.2016.0001") {
		t.Errorf("missing DOI line in output:\n%s", out)
	}
	if strings.Contains(out, "()") {
		t.Errorf("journal/year line printed for record without either:\n%s", out)
	}
}

func TestPrintResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	printResults(&buf, nil)
	if got := buf.String(); got != "No results.\n" {
		t.Errorf("output = %q, want %q", got, "No results.\n")
	}
}
