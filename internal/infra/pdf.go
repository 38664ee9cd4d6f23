package infra

// pdf.go — Recibo PDF generation using go-pdf/fpdf.
// Generates an A4 collection receipt with:
//   - Company header and recibo number / date
//   - Customer block (razón social, CUIT)
//   - Imputaciones table (factura, saldo al imputar, monto imputado)
//   - Retenciones table (tipo, jurisdicción, certificado, monto)
//   - Medios de pago table (tipo, referencia, monto)
//   - Totals footer
//
// The output file is saved to storagePath/recibo_{numero}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"distrigest/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateReciboPDF renders an approved recibo as a PDF document.
// storagePath is the directory where the PDF will be written (created if needed).
// Returns the absolute path to the generated file.
func GenerateReciboPDF(rec *model.Recibo, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("recibo_%d.pdf", rec.Numero)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30 // total margins = 30mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "DistriGest", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Recibo de Cobranza", "", 1, "L", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW/2, 6, fmt.Sprintf("Recibo N° %d", rec.Numero), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW/2, 6, "Fecha: "+rec.Fecha.Format("02/01/2006"), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	// ── Customer ─────────────────────────────────────────────────────────────
	if rec.Cliente != nil {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 5, rec.Cliente.RazonSocial, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW, 5, "CUIT: "+rec.Cliente.CUIT, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	drawRule := func() {
		x, y := pdf.GetXY()
		pdf.Line(x, y, x+contentW, y)
		pdf.Ln(1.5)
	}

	// ── Imputaciones ─────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Facturas imputadas", "", 1, "L", false, 0, "")
	drawRule()

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW*0.40, 5, "Factura", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.30, 5, "Saldo al imputar", "", 0, "R", false, 0, "")
	pdf.CellFormat(contentW*0.30, 5, "Importe", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, imp := range rec.Imputaciones {
		nro := imp.FacturaID.String()[:8]
		if imp.Factura != nil {
			nro = fmt.Sprintf("%04d-%08d", imp.Factura.PuntoDeVenta, imp.Factura.Numero)
		}
		pdf.CellFormat(contentW*0.40, 5, nro, "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.30, 5, "$ "+imp.SaldoAlImputar.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(contentW*0.30, 5, "$ "+imp.MontoImputado.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	// ── Retenciones ──────────────────────────────────────────────────────────
	if len(rec.Retenciones) > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "Retenciones", "", 1, "L", false, 0, "")
		drawRule()

		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(contentW*0.25, 5, "Tipo", "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.25, 5, "Jurisdicción", "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.25, 5, "Certificado", "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.25, 5, "Importe", "", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "", 8)
		for _, ret := range rec.Retenciones {
			jur, cert := "-", "-"
			if ret.Jurisdiccion != nil {
				jur = *ret.Jurisdiccion
			}
			if ret.NroCertificado != nil {
				cert = *ret.NroCertificado
			}
			pdf.CellFormat(contentW*0.25, 5, ret.Tipo, "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.25, 5, jur, "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.25, 5, cert, "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.25, 5, "$ "+ret.Monto.StringFixed(2), "", 1, "R", false, 0, "")
		}
		pdf.Ln(3)
	}

	// ── Medios de pago ───────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Medios de pago", "", 1, "L", false, 0, "")
	drawRule()

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW*0.30, 5, "Tipo", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.40, 5, "Referencia", "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW*0.30, 5, "Importe", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, mp := range rec.MediosPago {
		ref := "-"
		switch {
		case mp.Tipo == "cheque" && mp.NroCheque != nil:
			ref = "Cheque N° " + *mp.NroCheque
		case mp.Referencia != nil:
			ref = *mp.Referencia
		}
		pdf.CellFormat(contentW*0.30, 5, mp.Tipo, "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.40, 5, ref, "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.30, 5, "$ "+mp.Monto.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
	drawRule()

	// ── Totals ───────────────────────────────────────────────────────────────
	totalRow := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(contentW*0.70, 5.5, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(contentW*0.30, 5.5, value, "", 1, "R", false, 0, "")
	}
	totalRow("Total imputado:", "$ "+rec.TotalImputado.StringFixed(2), false)
	totalRow("Total retenciones:", "$ "+rec.TotalRetenciones.StringFixed(2), false)
	totalRow("Total a cobrar:", "$ "+rec.TotalACobrar.StringFixed(2), false)
	totalRow("TOTAL COBRADO:", "$ "+rec.TotalCobrado.StringFixed(2), true)

	if rec.Descripcion != nil && *rec.Descripcion != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4.5, *rec.Descripcion, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
