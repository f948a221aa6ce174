package middleware

import (
	"net/http"
	"sync"
	"time"

	"casacambio/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window limiter ──────────────────────────────────────────────────────

type ventana struct {
	count int
	fin   time.Time
}

// limitador counts requests per key inside fixed windows.
type limitador struct {
	mu       sync.Mutex
	limite   int
	duracion time.Duration
	entradas map[string]*ventana
}

func nuevoLimitador(limite int, duracion time.Duration) *limitador {
	l := &limitador{limite: limite, duracion: duracion, entradas: make(map[string]*ventana)}
	registrar(l)
	return l
}

// permitir counts one request for key and reports whether it is within the
// limit, plus the end of the current window.
func (l *limitador) permitir(key string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.entradas[key]
	if !ok || now.After(v.fin) {
		v = &ventana{fin: now.Add(l.duracion)}
		l.entradas[key] = v
	}
	v.count++
	return v.count <= l.limite, v.fin
}

// purgar drops expired windows and returns how many were removed.
func (l *limitador) purgar(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, v := range l.entradas {
		if now.After(v.fin) {
			delete(l.entradas, k)
			n++
		}
	}
	return n
}

// ── Middlewares ───────────────────────────────────────────────────────────────

var loginLimiter = nuevoLimitador(20, time.Minute)

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, _ := loginLimiter.permitir(c.ClientIP(), time.Now()); !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiados intentos de login. Intente en 1 minuto."))
			return
		}
		c.Next()
	}
}

// RateLimiter limits every request to limit per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := nuevoLimitador(limit, window)
	return func(c *gin.Context) {
		ok, fin := l.permitir(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", fin.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Expired windows are removed periodically so IPs that never return do not
// accumulate.

const purgeInterval = 5 * time.Minute

var (
	limitadores   []*limitador
	limitadoresMu sync.Mutex
	purgaOnce     sync.Once
)

func registrar(l *limitador) {
	limitadoresMu.Lock()
	limitadores = append(limitadores, l)
	limitadoresMu.Unlock()
	purgaOnce.Do(func() { go purgarPeriodicamente() })
}

func purgarPeriodicamente() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for now := range ticker.C {
		limitadoresMu.Lock()
		activos := append([]*limitador(nil), limitadores...)
		limitadoresMu.Unlock()

		total := 0
		for _, l := range activos {
			total += l.purgar(now)
		}
		if total > 0 {
			log.Debug().Int("entries_purged", total).Msg("rate limiter maps purged")
		}
	}
}
