package infra

// pdf.go renders the closing report of a caja and the receipt of a single
// transaction with go-pdf/fpdf. Both return the document bytes; GuardarPDF
// archives them under the configured storage path.

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"casacambio/internal/model"

	"github.com/go-pdf/fpdf"
)

const nombreNegocio = "Casa de Cambio"

// GenerarReporteCierre renders the closing report of a session: cash per
// currency with opening, closing and difference, then the bank balances.
// bancos maps bank IDs to display names; unknown IDs are printed as-is.
func GenerarReporteCierre(s model.SesionCaja, bancos map[string]string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, tr(nombreNegocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr("Reporte de cierre de caja"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Caja: "+s.ID.String(), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, tr("Apertura: "+s.Fecha.Format("02/01/2006 15:04")+" por "+s.AbiertaPor), "", 1, "L", false, 0, "")
	if s.CerradaEn != nil {
		pdf.CellFormat(contentW, 5, tr("Cierre: "+s.CerradaEn.Format("02/01/2006 15:04")+" por "+s.CerradaPor), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Efectivo ─────────────────────────────────────────────────────────────
	col := contentW / 4
	pdf.SetFont("Helvetica", "B", 9)
	for _, h := range []string{"Moneda", "Inicial", "Final", "Diferencia"} {
		pdf.CellFormat(col, 6, h, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	codigos := make([]string, 0, len(s.Monedas))
	for c := range s.Monedas {
		codigos = append(codigos, c)
	}
	sort.Strings(codigos)
	for _, c := range codigos {
		m := s.Monedas[c]
		pdf.CellFormat(col, 5, c, "", 0, "L", false, 0, "")
		pdf.CellFormat(col, 5, m.MontoInicial.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col, 5, m.MontoActual.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col, 5, m.Diferencia().StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// ── Bancos ───────────────────────────────────────────────────────────────
	if len(s.SaldosBancarios) > 0 {
		col3 := contentW / 3
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(col3, 6, "Banco", "B", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 6, "Moneda", "B", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 6, "Saldo", "B", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, b := range s.SaldosBancarios {
			nombre := bancos[b.BancoID]
			if nombre == "" {
				nombre = b.BancoID
			}
			pdf.CellFormat(col3, 5, tr(nombre), "", 0, "L", false, 0, "")
			pdf.CellFormat(col3, 5, b.Moneda, "", 0, "L", false, 0, "")
			pdf.CellFormat(col3, 5, b.Monto.StringFixed(2), "", 1, "R", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: reporte de cierre: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerarComprobante renders a receipt-sized voucher for one transaction.
func GenerarComprobante(t model.Transaccion, clienteNombre string) ([]byte, error) {
	// Close to thermal receipt paper.
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: 140},
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, tr(nombreNegocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr("Comprobante de operación"), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, t.ID.String(), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, t.Fecha.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.Line(4, pdf.GetY()+1, pageW-4, pdf.GetY()+1)
	pdf.Ln(3)

	fila := func(label, valor string) {
		pdf.CellFormat(contentW*0.45, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.55, 5, tr(valor), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 8)
	if clienteNombre != "" {
		fila("Cliente", clienteNombre)
	}
	fila("Operación", string(t.OperacionMoneda))
	fila("Tipo", t.TipoOperacion)
	fila("Monto", t.Monto.StringFixed(2))
	if t.Cotizacion != nil {
		fila("Cotización", t.Cotizacion.StringFixed(2))
	}
	if t.BancoID != nil {
		fila("Banco", *t.BancoID)
	}
	if t.MontoCalculado != nil {
		fila("Monto convertido", t.MontoCalculado.StringFixed(2))
	}
	if t.MontoNeto != nil {
		pdf.SetFont("Helvetica", "B", 9)
		fila("Neto", t.MontoNeto.StringFixed(2))
		pdf.SetFont("Helvetica", "", 8)
	}
	if t.Descripcion != "" {
		pdf.Ln(2)
		pdf.MultiCell(contentW, 4, tr(t.Descripcion), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: comprobante: %w", err)
	}
	return buf.Bytes(), nil
}

// GuardarPDF writes data to storagePath/nombre, creating the directory if
// needed, and returns the file path.
func GuardarPDF(storagePath, nombre string, data []byte) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	path := filepath.Join(storagePath, nombre)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return path, nil
}
