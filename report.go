package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Pricing is fixed and presentational: $3 per million tokens.
const costPerMillionTokens = 3.0

// costForTokens derives the dollar estimate for a token count.
func costForTokens(count int64) float64 {
	return float64(count) / 1_000_000 * costPerMillionTokens
}

// formatTokenCount renders a count with thousands grouping and the cost
// estimate, e.g. "1,234,567 tokens (≈$3.70 at $3/1M tokens)".
func formatTokenCount(count int64) string {
	return fmt.Sprintf("%s tokens (≈$%.2f at $3/1M tokens)", humanize.Comma(count), costForTokens(count))
}

// humanizeCount renders a plain counter with thousands grouping.
func humanizeCount(n int) string {
	return humanize.Comma(int64(n))
}

// Report is the machine-readable rendering of a run, written by --report.
type Report struct {
	Encoding      string       `json:"encoding" yaml:"encoding"`
	Files         []ReportFile `json:"files" yaml:"files"`
	TotalFiles    int          `json:"total_files" yaml:"total_files"`
	SkippedFiles  int          `json:"skipped_files" yaml:"skipped_files"`
	TotalTokens   int64        `json:"total_tokens" yaml:"total_tokens"`
	EstimatedCost float64      `json:"estimated_cost_usd" yaml:"estimated_cost_usd"`
}

// ReportFile is one file's entry in a Report.
type ReportFile struct {
	Path    string `json:"path" yaml:"path"`
	Size    int64  `json:"size" yaml:"size"`
	Tokens  int    `json:"tokens" yaml:"tokens"`
	Skipped bool   `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// buildReport assembles the report from the run's records and totals.
func buildReport(records []FileRecord, totals RunTotals, encoding string) Report {
	files := make([]ReportFile, 0, len(records))
	for _, rec := range records {
		files = append(files, ReportFile{
			Path:    rec.Path,
			Size:    rec.Size,
			Tokens:  rec.Tokens,
			Skipped: rec.Skipped,
		})
	}
	return Report{
		Encoding:      encoding,
		Files:         files,
		TotalFiles:    totals.Processed,
		SkippedFiles:  totals.Skipped,
		TotalTokens:   totals.Tokens,
		EstimatedCost: costForTokens(totals.Tokens),
	}
}

// writeReport writes the report to path, picking the encoding from the file
// suffix: .json for JSON, .yaml or .yml for YAML.
func writeReport(report Report, path string) error {
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(report, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case ".yaml", ".yml":
		data, err = yaml.Marshal(report)
	default:
		return fmt.Errorf("unsupported report format %q: use .json, .yaml or .yml", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
