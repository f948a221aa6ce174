package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"casacambio/internal/model"
	"casacambio/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueCierreCaja = "jobs:cierre_caja"
	QueueEmail      = "jobs:email"

	TipoCierreCaja = "cierre_caja"
	TipoEmail      = "email"

	// MaxIntentos is the number of attempts before a job goes to the DLQ.
	MaxIntentos = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Intentos int             `json:"intentos"`
}

// Procesador handles one job type. A returned error schedules a retry.
type Procesador interface {
	Procesar(ctx context.Context, payload json.RawMessage) error
}

// CierreCajaPayload is the job sent to QueueCierreCaja when a caja closes.
type CierreCajaPayload struct {
	Sesion model.SesionCaja `json:"sesion"`
	Indice int              `json:"indice"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

var _ service.EncoladorCierre = (*Dispatcher)(nil)

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EncolarCierreCaja pushes a closing report job.
func (d *Dispatcher) EncolarCierreCaja(ctx context.Context, sesion model.SesionCaja, indice int) error {
	return d.encolar(ctx, QueueCierreCaja, TipoCierreCaja, CierreCajaPayload{Sesion: sesion, Indice: indice})
}

// EncolarEmail pushes an email job.
func (d *Dispatcher) EncolarEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.encolar(ctx, QueueEmail, TipoEmail, payload)
}

func (d *Dispatcher) encolar(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return pushJob(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func pushJob(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// queueDeTipo maps a job type back to its source queue.
func queueDeTipo(jobType string) string {
	if jobType == TipoCierreCaja {
		return QueueCierreCaja
	}
	return QueueEmail
}

// Pool consumes both queues and dispatches jobs to their Procesador.
type Pool struct {
	rdb          *redis.Client
	procesadores map[string]Procesador
	espera       func(intento int) time.Duration
}

func NewPool(rdb *redis.Client, procesadores map[string]Procesador) *Pool {
	return &Pool{rdb: rdb, procesadores: procesadores, espera: backoff}
}

// backoff doubles from 30s: 30s, 60s, 120s...
func backoff(intento int) time.Duration {
	return 30 * time.Second << (intento - 1)
}

// Start launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP: zero CPU when idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.runWorker(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	queues := []string{QueueCierreCaja, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.procesar(ctx, result[0], result[1])
		}
	}
}

// procesar runs one raw job. Failures are scheduled for retry until
// MaxIntentos, then moved to the DLQ.
func (p *Pool) procesar(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, "", json.RawMessage(raw), "payload ilegible", 0)
		return
	}
	proc, ok := p.procesadores[job.Type]
	if !ok {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "tipo de job desconocido", job.Intentos)
		return
	}

	job.Intentos++
	err := p.ejecutar(ctx, proc, job.Payload)
	if err == nil {
		log.Info().Str("type", job.Type).Int("intento", job.Intentos).Msg("job procesado")
		return
	}
	if job.Intentos >= MaxIntentos {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Intentos)
		return
	}
	cuando := time.Now().Add(p.espera(job.Intentos))
	if rerr := programarReintento(ctx, p.rdb, job, cuando); rerr != nil {
		log.Error().Err(rerr).Str("type", job.Type).Msg("no se pudo programar el reintento")
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Intentos)
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("intento", job.Intentos).Time("reintento", cuando).Msg("job falló, se reintentará")
}

func (p *Pool) ejecutar(ctx context.Context, proc Procesador, payload json.RawMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return proc.Procesar(ctx, payload)
}
