package services

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"
)

// 80mm thermal ticket in points.
const (
	receiptWidth  = 226.77
	receiptHeight = 366.93
	receiptMargin = 10.0
	logoWidth     = 150.0
	logoHeight    = 60.0
	rowLineHeight = 8.0
)

type receiptColumn struct {
	title string
	x, w  float64
	align string
}

var receiptColumns = []receiptColumn{
	{"DESCRIPCIÓN", 15, 80, "L"},
	{"CANT", 95, 30, "C"},
	{"MED", 125, 25, "C"},
	{"P.U.", 150, 30, "C"},
	{"TOTAL", 180, 30, "C"},
}

// ReceiptRenderer lays a snapshot out as a fixed-width thermal receipt PDF.
type ReceiptRenderer struct {
	logoPath string
}

func NewReceiptRenderer(logoPath string) *ReceiptRenderer {
	return &ReceiptRenderer{logoPath: logoPath}
}

func (r *ReceiptRenderer) Render(s ReceiptSnapshot) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: receiptWidth, Ht: receiptHeight},
	})
	pdf.SetMargins(receiptMargin, receiptMargin, receiptMargin)
	pdf.SetAutoPageBreak(true, receiptMargin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if r.logoPath != "" {
		if _, err := os.Stat(r.logoPath); err == nil {
			y := pdf.GetY()
			pdf.ImageOptions(r.logoPath, (receiptWidth-logoWidth)/2, y, logoWidth, logoHeight,
				false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
			pdf.SetY(y + logoHeight + 5)
		}
	}

	centered := func(size float64, style, text string) {
		pdf.SetFont("Helvetica", style, size)
		pdf.CellFormat(0, size+2, tr(text), "", 1, "C", false, 0, "")
	}
	divider := func(dashed bool) {
		y := pdf.GetY() + 3
		if dashed {
			pdf.SetDashPattern([]float64{2, 2}, 0)
		}
		pdf.Line(receiptMargin, y, receiptWidth-receiptMargin, y)
		pdf.SetDashPattern([]float64{}, 0)
		pdf.SetY(y + 5)
	}

	for _, line := range []string{s.ShopAddress1, s.ShopAddress2, s.ShopAddress3} {
		if line != "" {
			centered(7, "", strings.ReplaceAll(line, "\n", " "))
		}
	}
	if s.ShopPhone != "" {
		centered(7, "", "TEL: "+s.ShopPhone)
	}
	divider(true)
	centered(7, "B", "RUC: "+s.ShopRUC)
	divider(true)
	centered(7, "B", "NOTA DE VENTA")
	centered(10, "B", s.TicketNumber)
	divider(true)

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(0, 9, tr("CLIENTE: "+s.ClientName), "", 1, "L", false, 0, "")
	half := (receiptWidth - 2*receiptMargin) / 2
	pdf.CellFormat(half, 9, tr("FECHA EMISION: "+s.Date), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 9, tr("HORA: "+s.Time), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 9, "MONEDA: SOLES", "", 1, "L", false, 0, "")

	divider(true)
	centered(6, "B", "ESTE NO ES UN COMPROBANTE DE PAGO VÁLIDO")
	divider(true)

	pdf.SetFont("Helvetica", "B", 7)
	headerY := pdf.GetY()
	for _, col := range receiptColumns {
		pdf.SetXY(col.x, headerY)
		pdf.CellFormat(col.w, 9, tr(col.title), "", 0, col.align, false, 0, "")
	}
	pdf.SetY(headerY + 9)
	divider(false)

	pdf.SetFont("Helvetica", "", 6)
	code := s.PaymentCode()
	measure := func(text string) float64 { return pdf.GetStringWidth(tr(text)) }
	for _, line := range s.Treatments {
		names := wrapText(line.Name, receiptColumns[0].w, measure)
		y := pdf.GetY()
		for i, name := range names {
			pdf.SetXY(receiptColumns[0].x, y+float64(i)*rowLineHeight)
			pdf.CellFormat(receiptColumns[0].w, rowLineHeight, tr(name), "", 0, "L", false, 0, "")
		}
		cells := []string{
			strconv.Itoa(line.Quantity),
			code,
			s.Currency + line.Price.StringFixed(2),
			s.Currency + line.Total().StringFixed(2),
		}
		for i, text := range cells {
			col := receiptColumns[i+1]
			pdf.SetXY(col.x, y)
			pdf.CellFormat(col.w, rowLineHeight, tr(text), "", 0, col.align, false, 0, "")
		}
		pdf.SetY(y + float64(len(names))*rowLineHeight + 2)
	}
	divider(false)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(half, 12, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 12, tr(s.Currency+s.TotalPrice.StringFixed(2)), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	centered(8, "B", "¡GRACIAS POR SU PREFERENCIA!")
	centered(6, "", fmt.Sprintf("Fecha de emisión: %s %s", s.Date, s.Time))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// wrapText greedily splits text on spaces so each line measures at most maxWidth.
// A single word wider than maxWidth gets a line of its own.
func wrapText(text string, maxWidth float64, measure func(string) float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
