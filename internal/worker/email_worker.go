package worker

// email_worker.go
// Processes email jobs from QueueEmail: sends the closing report PDF.

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"casacambio/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// Enviador is the mail capability the workers need.
type Enviador interface {
	Configurado() bool
	Enviar(to, subject, body string, adjuntos ...infra.Adjunto) error
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer Enviador
}

func NewEmailWorker(mailer Enviador) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Procesar sends one email, attaching the PDF when a path is given.
func (w *EmailWorker) Procesar(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	var adjuntos []infra.Adjunto
	if payload.PDFPath != "" {
		data, err := os.ReadFile(payload.PDFPath)
		if err != nil {
			return fmt.Errorf("email_worker: read attachment: %w", err)
		}
		adjuntos = append(adjuntos, infra.Adjunto{Nombre: filepath.Base(payload.PDFPath), Contenido: data, Tipo: "application/pdf"})
	}

	if err := w.mailer.Enviar(payload.ToEmail, payload.Subject, payload.Body, adjuntos...); err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: email sent")
	return nil
}
