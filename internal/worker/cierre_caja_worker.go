package worker

// cierre_caja_worker.go
// Processes closing jobs from QueueCierreCaja.
// Renders the closing report PDF, archives it and, when a recipient is
// configured, enqueues the email that carries it.

import (
	"context"
	"encoding/json"
	"fmt"

	"casacambio/internal/infra"
	"casacambio/internal/model"

	"github.com/rs/zerolog/log"
)

// ListadorBancos resolves bank IDs to display names for the report.
type ListadorBancos interface {
	Listar() []model.Banco
}

// EncoladorEmail is satisfied by *Dispatcher.
type EncoladorEmail interface {
	EncolarEmail(ctx context.Context, payload EmailJobPayload) error
}

// CierreCajaWorker processes closing report jobs from QueueCierreCaja.
type CierreCajaWorker struct {
	bancos         ListadorBancos
	emails         EncoladorEmail
	pdfStoragePath string
	destinatario   string
}

// NewCierreCajaWorker wires the closing worker. An empty destinatario
// disables the email step.
func NewCierreCajaWorker(bancos ListadorBancos, emails EncoladorEmail, pdfStoragePath, destinatario string) *CierreCajaWorker {
	return &CierreCajaWorker{
		bancos:         bancos,
		emails:         emails,
		pdfStoragePath: pdfStoragePath,
		destinatario:   destinatario,
	}
}

// NombreReporte is the archived file name of the report of history entry indice.
func NombreReporte(indice int, sesion model.SesionCaja) string {
	return fmt.Sprintf("cierre_%d_%s.pdf", indice, sesion.ID)
}

func (w *CierreCajaWorker) Procesar(ctx context.Context, raw json.RawMessage) error {
	var payload CierreCajaPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("cierre_worker: invalid payload: %w", err)
	}

	nombres := map[string]string{}
	if w.bancos != nil {
		for _, b := range w.bancos.Listar() {
			nombres[b.ID] = b.Nombre
		}
	}

	data, err := infra.GenerarReporteCierre(payload.Sesion, nombres)
	if err != nil {
		return err
	}
	path, err := infra.GuardarPDF(w.pdfStoragePath, NombreReporte(payload.Indice, payload.Sesion), data)
	if err != nil {
		return err
	}
	log.Info().Str("caja_id", payload.Sesion.ID.String()).Str("path", path).Msg("cierre_worker: reporte generado")

	if w.destinatario == "" || w.emails == nil {
		return nil
	}
	fecha := payload.Sesion.Fecha.Format("02/01/2006")
	// A failed enqueue retries the whole job; regenerating the PDF is idempotent.
	return w.emails.EncolarEmail(ctx, EmailJobPayload{
		ToEmail: w.destinatario,
		Subject: "Cierre de caja " + fecha,
		Body:    "Se adjunta el reporte de cierre de la caja del " + fecha + ".",
		PDFPath: path,
	})
}
