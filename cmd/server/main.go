package main

import (
	"net/http"
	"os"
	"time"

	"github.com/AlexTLDR/eventdeck/internal/backend"
	"github.com/AlexTLDR/eventdeck/internal/config"
	"github.com/AlexTLDR/eventdeck/internal/database"
	"github.com/AlexTLDR/eventdeck/internal/geocode"
	"github.com/AlexTLDR/eventdeck/internal/mailer"
	"github.com/AlexTLDR/eventdeck/internal/server"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	// Load .env file (ignore error if a file doesn't exist)
	// Use Overload to force to overwrite any existing environment variables
	if err := godotenv.Overload(); err != nil {
		log.Warn().Err(err).Msg("Error loading .env file")
	} else {
		log.Info().Msg(".env file loaded successfully (with overload)")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func(db *database.DB) {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}(db)

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// No client timeout: calls are bounded only by the transport and request context.
	httpClient := &http.Client{}

	srv := server.New(cfg, server.Deps{
		DB:       db,
		Backend:  backend.New(cfg.BackendURL, httpClient, log),
		Mailer:   newMailer(cfg, httpClient, log),
		Geocoder: geocode.New(cfg.GeocodeURL, cfg.GeocodeUserAgent, cfg.TileURL, httpClient, log),
		Log:      log,
	})

	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func newMailer(cfg *config.Config, client *http.Client, log zerolog.Logger) mailer.Sender {
	if cfg.MailProvider == config.MailProviderSMTP {
		log.Info().Str("host", cfg.SMTPHost).Msg("Sending confirmations over SMTP")
		return mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	}
	log.Info().Msg("Sending confirmations through EmailJS")
	return mailer.NewEmailJS(cfg.EmailJSEndpoint, cfg.EmailJSServiceID, cfg.EmailJSTemplateID, cfg.EmailJSPublicKey, client, log)
}
