package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	_ "github.com/SeiwaLabs/invoice_kanri_app/cmd/docs"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/adapters/connector"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/adapters/filestore"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/adapters/mailbox"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/adapters/recognition"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/adapters/registry"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/core/services"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/handlers"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/middleware"
	"github.com/SeiwaLabs/invoice_kanri_app/internal/repositories/database/pgsql"
	"github.com/SeiwaLabs/invoice_kanri_app/pkg/config"
	"github.com/SeiwaLabs/invoice_kanri_app/pkg/database"
)

// @title Invoice Kanri Backend API
// @version 1.0
// @description Invoice intake, compliance and payment lifecycle backend.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		os.Exit(1)
	}

	fileStore, err := filestore.NewLocalStore(cfg.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize file store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	creds := connector.NewCredentialStore(&oauth2.Config{
		ClientID:     cfg.FreeeClientID,
		ClientSecret: cfg.FreeeClientSecret,
		RedirectURL:  cfg.FreeeRedirectURL,
		Endpoint:     connector.FreeeEndpoint,
	})
	freee := connector.NewFreeeConnector(creds)

	gmailConf := &oauth2.Config{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		RedirectURL:  cfg.GmailRedirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/gmail.modify"},
		Endpoint:     googleoauth.Endpoint,
	}
	fetcher, err := mailbox.NewGmailFetcher(context.Background(), gmailConf, &oauth2.Token{
		RefreshToken: cfg.GmailRefreshToken,
	})
	if err != nil {
		logger.Error("Failed to initialize mailbox fetcher", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	container := services.NewServiceContainer(cfg, repos, services.Collaborators{
		Recognizer:  recognition.NewVisionRecognizer(cfg.OpenAIAPIKey, cfg.OpenAIModel),
		Registry:    registry.NewClient(cfg.NTAAPIBaseURL),
		Connector:   freee,
		FileStore:   fileStore,
		MailFetcher: fetcher,
	})

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid RATE_LIMIT value", slog.String("value", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container, freee)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending migrations from the migrations directory.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		return err
	}
	if err := migrationDB.Ping(); err != nil {
		logger.Error("Failed to ping database for migrations", slog.String("error", err.Error()))
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Error("Migration source error", slog.String("error", sourceErr.Error()))
		return sourceErr
	}
	if dbErr != nil {
		logger.Error("Migration database error", slog.String("error", dbErr.Error()))
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
