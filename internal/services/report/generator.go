// Package report renders the printable availability sheet: one page per
// block, floors laid out as a fixed-column grid with status-colored cells,
// plus a QR code linking back to the interactive tour.
package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/salehouse/tour3d/internal/building"
)

// Config holds configuration for PDF generation
type Config struct {
	ObjectName string `json:"objectName"`
	// TourURL ends up in the QR code on each page. Empty skips the code.
	TourURL string `json:"tourUrl"`
}

const (
	pageWidth  = 210.0
	pageHeight = 297.0
	marginLeft = 15.0
	marginTop  = 20.0
	rowHeight  = 10.0
	cellGap    = 1.5
)

// GenerateAvailabilityPDF renders the availability sheet for a set of
// blocks. Blocks without homes are skipped, matching the on-screen view.
func GenerateAvailabilityPDF(cfg Config, blocks []building.Block) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginLeft)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetFont("Arial", "B", 10)

	var qrPng []byte
	if cfg.TourURL != "" {
		png, err := qrcode.Encode(cfg.TourURL, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("report: tour QR: %w", err)
		}
		qrPng = png
	}

	rendered := 0
	for _, block := range blocks {
		if !building.HasHomes(block.Floors) {
			continue
		}
		renderBlock(pdf, cfg, block, qrPng)
		rendered++
	}
	if rendered == 0 {
		pdf.AddPage()
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, 10, "No apartments listed for "+cfg.ObjectName, "", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	return buf.Bytes(), nil
}

func renderBlock(pdf *gofpdf.Fpdf, cfg Config, block building.Block, qrPng []byte) {
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 8, cfg.ObjectName, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 7, "Block "+block.BlockName, "", 1, "L", false, 0, "")

	if qrPng != nil {
		imgName := fmt.Sprintf("qr_block_%d", block.BlockID)
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		_ = pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(qrPng))
		pdf.ImageOptions(imgName, pageWidth-marginLeft-22, marginTop-8, 22, 22, false, opts, 0, "")
	}

	counts := building.Counts(block.Floors)
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Available: %d   Reserved: %d   Sold: %d",
		counts.Available+counts.Default, counts.Reserved, counts.Sold), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	cols := building.MaxColumns(block.Floors)
	if cols == 0 {
		return
	}
	availW := pageWidth - 2*marginLeft - 12 // 12mm reserved for the floor label
	cellW := (availW - float64(cols-1)*cellGap) / float64(cols)

	pdf.SetFont("Arial", "B", 8)
	for _, row := range building.GridRows(block.Floors, cols) {
		y := pdf.GetY()
		if y+rowHeight > pageHeight-20 {
			pdf.AddPage()
			y = pdf.GetY()
		}

		pdf.SetTextColor(60, 60, 60)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(10, rowHeight, fmt.Sprintf("%d", row.Floor), "", 0, "R", false, 0, "")

		x := marginLeft + 12
		for _, cell := range row.Cells {
			if cell.Filler {
				x += cellW + cellGap
				continue
			}
			r, g, b := hexRGB(building.DotColor(cell.Apartment.Status))
			pdf.SetFillColor(r, g, b)
			pdf.SetTextColor(255, 255, 255)
			pdf.SetXY(x, y+1)
			pdf.CellFormat(cellW, rowHeight-2, cell.Apartment.Number, "", 0, "C", true, 0, "")
			x += cellW + cellGap
		}
		pdf.SetY(y + rowHeight)
	}
	pdf.SetTextColor(0, 0, 0)
}

// hexRGB splits a #rrggbb color into its components. Malformed input
// falls back to mid gray.
func hexRGB(hex string) (int, int, int) {
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return 128, 128, 128
	}
	return r, g, b
}
