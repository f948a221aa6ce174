// cmd/seedoperador creates or updates the administrator operator.
// Uso: ADMIN_EMAIL=... ADMIN_PASSWORD=... go run ./cmd/seedoperador
package main

import (
	"context"
	"fmt"

	"casacambio/internal/config"
	"casacambio/internal/infra"
	"casacambio/internal/model"
	"casacambio/internal/repository"
	"casacambio/internal/service"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if len(cfg.AdminPassword) < 8 {
		log.Fatal().Msg("ADMIN_PASSWORD debe tener al menos 8 caracteres")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("migrations error")
	}

	ctx := context.Background()
	ops := service.NewOperadorService(
		repository.NewAlmacen[[]model.Operador](repository.NewDocumentoRepository(db), repository.ClaveOperadores), "")
	if err := ops.Cargar(ctx); err != nil {
		log.Fatal().Err(err).Msg("load operators error")
	}
	op, err := ops.Sembrar(ctx, cfg.AdminEmail, "", cfg.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("seed error")
	}
	fmt.Printf("Operador '%s' (id %s) creado/actualizado\n", op.Email, op.ID)
}
