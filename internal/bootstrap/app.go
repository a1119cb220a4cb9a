package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"padhaihub-backend/internal/checks"
	"padhaihub-backend/internal/extract"
	"padhaihub-backend/internal/llm"
	"padhaihub-backend/internal/llm/openai"
	"padhaihub-backend/internal/services/health"
	"padhaihub-backend/internal/shared/auth"
	"padhaihub-backend/internal/shared/config"
	"padhaihub-backend/internal/shared/server"
	"padhaihub-backend/internal/shared/server/middleware"
	"padhaihub-backend/internal/shared/storage/db"
	"padhaihub-backend/internal/shared/storage/object"
	localstore "padhaihub-backend/internal/shared/storage/object/local"
	s3store "padhaihub-backend/internal/shared/storage/object/s3"
	"padhaihub-backend/internal/shared/telemetry"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	DB            *sql.DB
	Store         object.ObjectStore
	LLM           llm.Client
	ChecksRepo    checks.Repo
	ChecksService *checks.Service
	ChecksHandler *checks.Handler
	Health        *health.Service
	Verifier      *auth.Verifier
}

// Option adjusts the App before routes are wired.
type Option func(*App)

// WithLLM replaces the configured model client, mainly for tests.
func WithLLM(client llm.Client) Option {
	return func(a *App) { a.LLM = client }
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	telemetry.SetLevel(cfg.LogLevel)
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	verifier, err := auth.NewVerifier(cfg.JWTSecret, cfg.Env)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		Verifier: verifier,
	}
	app.LLM, err = buildLLM(cfg)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(app)
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        app.Config,
		Verifier:      app.Verifier,
		ChecksHandler: app.ChecksHandler,
		Health:        app.Health,
		RateLimiter:   middleware.NewRateLimiter(nil),
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.memory_repo", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		if err = db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			err = fmt.Errorf("run migrations: %w", err)
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repo", map[string]any{"reason": "database unavailable", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildLLM returns the placeholder client when no key is configured so the
// service still boots; checks then fail with ai_unavailable.
func buildLLM(cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai", "openai-compatible", "":
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLMProvider)
	}
	if strings.TrimSpace(cfg.LLMAPIKey) == "" {
		telemetry.Warn("bootstrap.llm_not_configured", map[string]any{"provider": cfg.LLMProvider})
		return llm.PlaceholderClient{}, nil
	}
	client, err := openai.NewClient(openai.Options{
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		APIURL:  cfg.LLMAPIURL,
		Timeout: cfg.LLMTimeout,
	})
	if err != nil {
		return nil, err
	}
	return llm.WithRetry(client, llm.RetryPolicy{MaxRetries: cfg.LLMMaxRetries}), nil
}

func buildServices(app *App) {
	if app.DB != nil {
		app.ChecksRepo = &checks.PGRepo{DB: app.DB}
		app.Health = health.NewService(app.DB)
	} else {
		app.ChecksRepo = checks.NewMemoryRepo()
		app.Health = health.NewService(nil)
	}
	app.ChecksService = &checks.Service{
		Store:          app.Store,
		Repo:           app.ChecksRepo,
		Extractor:      extract.Extractor{ParserFirst: app.Config.PDFParserFirst},
		LLM:            app.LLM,
		Provider:       app.Config.LLMProvider,
		Model:          app.Config.LLMModel,
		LLMTimeout:     app.Config.LLMTimeout,
		MaxPromptChars: app.Config.MaxPromptChars,
		KeepExtracted:  app.Config.KeepExtracted,
	}
	app.ChecksHandler = checks.NewHandler(app.ChecksService, app.Config.MaxUploadBytes)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
