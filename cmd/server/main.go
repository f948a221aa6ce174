package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casacambio/internal/config"
	"casacambio/internal/infra"
	"casacambio/internal/repository"
	"casacambio/internal/router"
	"casacambio/internal/service"
	"casacambio/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func configurarLogger(cfg *config.Config) {
	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	configurarLogger(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// ── Services ─────────────────────────────────────────────────────────────
	// The redis serializer reloads every store when another replica wrote
	// since this one last held the lock.
	var svcs *service.Servicios
	serial := infra.NewSerializadorRedis(rdb, time.Duration(cfg.LockExpirySeconds)*time.Second, func(ctx context.Context) error {
		return svcs.Cargar(ctx)
	})
	dispatcher := worker.NewDispatcher(rdb)
	svcs = service.NewServicios(service.OpcionesServicios{
		Config:    cfg,
		Repo:      repository.NewDocumentoRepository(db),
		Serial:    serial,
		Encolador: dispatcher,
		// The default admin starts without a password; use cmd/seedoperador.
		HashAdmin: "",
	})
	if err := svcs.Cargar(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to load stores")
	}

	// ── Workers ──────────────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)
	pool := worker.NewPool(rdb, map[string]worker.Procesador{
		worker.TipoCierreCaja: worker.NewCierreCajaWorker(svcs.Bancos, dispatcher, cfg.PDFStoragePath, cfg.ReporteCierreEmail),
		worker.TipoEmail:      worker.NewEmailWorker(mailer),
	})
	pool.Start(ctx, cfg.WorkerPoolSize)
	worker.StartRetryCron(ctx, rdb)

	r := router.New(router.Dependencias{
		Config:    cfg,
		Servicios: svcs,
		DB:        db,
		Redis:     rdb,
		Mailer:    mailer,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("casacambio listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("server exited")
}
