package infra

import (
	"bytes"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"casacambio/internal/config"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// ErrSMTPNoConfigurado is returned when SMTP_HOST is empty.
var ErrSMTPNoConfigurado = errors.New("smtp no configurado")

// Adjunto is an in-memory attachment.
type Adjunto struct {
	Nombre    string
	Contenido []byte
	Tipo      string
}

// Mailer sends report emails. Consecutive SMTP failures open the breaker so
// workers fail fast and their jobs go to retry instead of piling up on a dead
// server.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	cb       *gobreaker.CircuitBreaker
	send     func(e *email.Email, addr string, a smtp.Auth) error
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		cb:       newSMTPBreaker(),
		send:     func(e *email.Email, addr string, a smtp.Auth) error { return e.Send(addr, a) },
	}
}

func newSMTPBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 5 },
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("desde", from.String()).Str("hacia", to.String()).Msg("circuit breaker cambió de estado")
		},
	})
}

// Configurado reports whether an SMTP host was provided.
func (m *Mailer) Configurado() bool { return m.host != "" }

// Estado exposes the breaker state for the health endpoint.
func (m *Mailer) Estado() string { return m.cb.State().String() }

// Enviar sends a plain-text email with optional attachments.
func (m *Mailer) Enviar(to, subject, body string, adjuntos ...Adjunto) error {
	if !m.Configurado() {
		return ErrSMTPNoConfigurado
	}
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)
	for _, a := range adjuntos {
		if _, err := e.Attach(bytes.NewReader(a.Contenido), a.Nombre, a.Tipo); err != nil {
			return fmt.Errorf("mailer: adjuntar %s: %w", a.Nombre, err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	_, err := m.cb.Execute(func() (interface{}, error) {
		return nil, m.send(e, m.addr, auth)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("smtp no disponible: %w", err)
	}
	return err
}
