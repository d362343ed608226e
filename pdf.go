package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 210 // A4 width in mm
	pdfMargin     = 10  // margin in mm
	pdfLineHeight = 5   // line height in mm
	pdfFontSize   = 9
)

// generatePDF renders the per-file results and the run summary as a PDF.
// The core PDF fonts are cp1252, so these lines use "~" where the terminal
// output uses U+2248.
func generatePDF(records []FileRecord, totals RunTotals, encoding, outputPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.AddPage()

	width := float64(pdfPageWidth - 2*pdfMargin)

	pdf.SetFont("Helvetica", "B", pdfFontSize+3)
	pdf.MultiCell(width, pdfLineHeight+1, "Token Count Report", "", "L", false)
	pdf.SetFont("Helvetica", "", pdfFontSize-1)
	pdf.MultiCell(width, pdfLineHeight, fmt.Sprintf("Encoding: %s", encoding), "", "L", false)
	pdf.Ln(pdfLineHeight / 2)

	pdf.SetFont("Courier", "", pdfFontSize)
	for _, rec := range records {
		var line string
		if rec.Skipped {
			line = fmt.Sprintf("Skipped %s: File too large", rec.Path)
		} else {
			line = fmt.Sprintf("%s: %s tokens (~$%.2f at $3/1M tokens)",
				rec.Path, humanizeCount(rec.Tokens), costForTokens(int64(rec.Tokens)))
		}
		pdf.MultiCell(width, pdfLineHeight, line, "", "L", false)
	}

	pdf.Ln(pdfLineHeight)
	pdf.SetFont("Helvetica", "B", pdfFontSize+1)
	pdf.MultiCell(width, pdfLineHeight, "Summary", "", "L", false)
	pdf.SetFont("Helvetica", "", pdfFontSize)
	summary := fmt.Sprintf("Total files processed: %s\nFiles skipped (too large): %s\nTotal: %s tokens (~$%.2f at $3/1M tokens)",
		humanizeCount(totals.Processed),
		humanizeCount(totals.Skipped),
		humanize.Comma(totals.Tokens),
		costForTokens(totals.Tokens))
	pdf.MultiCell(width, pdfLineHeight, summary, "", "L", false)

	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("save PDF to %s: %w", outputPath, err)
	}
	return nil
}
