// Comando token emite un JWT para un usuario existente. Sirve para pruebas locales
// y para integraciones que no pasan por el proveedor de identidad.
//
//	go run ./cmd/token -user 2
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/stock-ledger/internal/application/auth"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/backend"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	userID := flag.Int64("user", 0, "ID del usuario")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if *userID <= 0 {
		log.Fatal().Msg("-user es obligatorio")
	}

	ctx := context.Background()
	db, err := backend.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir persistencia")
	}
	defer db.Close()

	uc := auth.NewTokenUseCase(db.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	token, user, err := uc.IssueToken(ctx, *userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", *userID).Msg("emitir token")
		db.Close()
		os.Exit(1)
	}
	log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("token emitido")
	fmt.Println(token)
}
