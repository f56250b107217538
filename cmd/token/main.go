// Command token emite un JWT de operación para pruebas locales y scripts de planta.
// La API no gestiona sesiones: los tokens los emite un proveedor externo o esta herramienta.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/Concreto-api/internal/domain/entity"
	"github.com/jhoicas/Concreto-api/pkg/config"
	"github.com/jhoicas/Concreto-api/pkg/jwt"
	"github.com/jhoicas/Concreto-api/pkg/logger"
)

func main() {
	userID := flag.String("user", "", "ID del usuario (obligatorio)")
	companyID := flag.String("company", "", "ID de la empresa (obligatorio)")
	role := flag.String("role", entity.RoleOperador, "admin | operador | bodeguero | vendedor")
	minutes := flag.Int("exp", 0, "minutos de validez (0 = JWT_EXPIRATION_MINUTES)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Out: os.Stderr})

	switch *role {
	case entity.RoleAdmin, entity.RoleOperador, entity.RoleBodeguero, entity.RoleVendedor:
	default:
		log.Fatal().Str("role", *role).Msg("rol desconocido")
	}
	exp := *minutes
	if exp <= 0 {
		exp = cfg.JWT.Expiration
	}

	tok, err := jwt.Generate(cfg.JWT.Secret, *userID, *companyID, *role, cfg.JWT.Issuer, exp)
	if err != nil {
		log.Fatal().Err(err).Msg("generar token")
	}
	log.Info().Str("user_id", *userID).Str("role", *role).Int("exp_min", exp).Msg("token emitido")
	fmt.Println(tok)
}
