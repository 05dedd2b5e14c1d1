package src

import (
	"os"
	"strconv"

	"triggers-triumphs-api/src/billing"
	"triggers-triumphs-api/src/config"
	"triggers-triumphs-api/src/db"
	"triggers-triumphs-api/src/entitlement"
	"triggers-triumphs-api/src/openai"
	"triggers-triumphs-api/src/quota"
	"triggers-triumphs-api/src/server"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Run loads configuration, wires the stores and serves the API until
// interrupted.
func Run() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Msgf("failed to load config: %v", err)
	}

	logger := newLogger(cfg)

	if cfg.SecretKeyGenerated {
		logger.Warn().Msg("SECRET_KEY not set, generated a random one. Sessions will not survive restarts.")
	}

	quotaStore, proStore := initStores(cfg, logger)

	srv := server.New(cfg, server.Options{
		Logger:       logger,
		Sessions:     server.NewSessionStore(cfg),
		Quota:        quotaStore,
		Entitlements: proStore,
		Billing:      billing.NewClient(cfg),
		Generator:    openai.NewClient(cfg.OpenAIAPIKey),
	})

	if err := srv.Run(); err != nil {
		logger.Fatal().Msgf("server error: %v", err)
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	logLevel, err := strconv.Atoi(cfg.LogLevel)
	if err != nil {
		logLevel = int(zerolog.InfoLevel)
	}
	zerolog.SetGlobalLevel(zerolog.Level(logLevel))

	return log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Caller().Logger()
}

// initStores connects to postgres when configured and falls back to
// in-memory tracking otherwise.
func initStores(cfg config.Config, logger zerolog.Logger) (quota.Store, entitlement.Store) {
	if !cfg.HasDatabase() {
		logger.Warn().Msg("no database configured; tracking usage in memory")
		return quota.NewMemStore(), entitlement.NewMemStore()
	}

	conn, err := db.Init(cfg)
	if err != nil {
		logger.Fatal().Msgf("failed to connect to database: %v", err)
	}

	if err := db.CreateSchema(conn, (*quota.DailyUsage)(nil), (*entitlement.Entitlement)(nil)); err != nil {
		logger.Fatal().Msgf("failed to create schema: %v", err)
	}

	return quota.NewPGStore(conn), entitlement.NewPGStore(conn)
}

// GenerateProCode prints a fresh admin Pro code suitable for ADMIN_PRO_CODE.
func GenerateProCode() string {
	return uuid.New().String()
}
