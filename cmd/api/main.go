package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/cyberon-reporter/internal/adapter/handler"
	"github.com/johnquangdev/cyberon-reporter/internal/adapter/repository"
	"github.com/johnquangdev/cyberon-reporter/internal/adapter/telegram"
	"github.com/johnquangdev/cyberon-reporter/internal/domain/repositories"
	"github.com/johnquangdev/cyberon-reporter/internal/infrastructure/cache"
	"github.com/johnquangdev/cyberon-reporter/internal/infrastructure/database"
	httpmw "github.com/johnquangdev/cyberon-reporter/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/cyberon-reporter/internal/infrastructure/media"
	"github.com/johnquangdev/cyberon-reporter/internal/infrastructure/storage"
	"github.com/johnquangdev/cyberon-reporter/internal/usecase/access"
	"github.com/johnquangdev/cyberon-reporter/internal/usecase/extraction"
	"github.com/johnquangdev/cyberon-reporter/internal/usecase/pipeline"
	"github.com/johnquangdev/cyberon-reporter/internal/usecase/report"
	"github.com/johnquangdev/cyberon-reporter/internal/usecase/reporting"
	"github.com/johnquangdev/cyberon-reporter/internal/usecase/transcription"
	pkgai "github.com/johnquangdev/cyberon-reporter/pkg/ai"
	"github.com/johnquangdev/cyberon-reporter/pkg/config"
	"github.com/johnquangdev/cyberon-reporter/pkg/jwt"
	pkglogger "github.com/johnquangdev/cyberon-reporter/pkg/logger"
	pkgmw "github.com/johnquangdev/cyberon-reporter/pkg/middleware"
	pkgvalidator "github.com/johnquangdev/cyberon-reporter/pkg/validator"
)

// @title           Cyberon Reporter API
// @version         1.0
// @description     Turns spoken attendance reports into xlsx spreadsheets
// @BasePath        /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := pkglogger.New(cfg.Log.Level, cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("🔧 Initializing dependencies...")

	checks := map[string]handler.HealthCheck{}

	// Report pipeline
	orchestrator, err := buildPipeline(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build report pipeline", zap.Error(err))
	}

	// Rate limiting
	store := cache.NewMemoryStore()
	defer store.Close()
	var limiter cache.Limiter = cache.NewMemoryLimiter(store, cfg.RateLimit.Requests, cfg.RateLimit.Window)

	if cfg.Redis.Enabled {
		logger.Info("📦 Connecting to Redis...")
		rdb, err := cache.NewRedisClient(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()

		limiter = cache.NewFallbackLimiter(
			cache.NewRedisLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window),
			limiter,
			logger,
		)
		checks["redis"] = redisCheck(rdb)
	}

	// Run history
	var runs repositories.ReportRunRepository
	if cfg.Database.Enabled {
		logger.Info("📦 Connecting to database...")
		db, err := database.NewPostgresDB(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer database.CloseDB(db)

		if cfg.Database.AutoMigrate {
			n, err := database.Migrate(db, migrate.Up, 0)
			if err != nil {
				logger.Fatal("Failed to apply migrations", zap.Error(err))
			}
			logger.Info("🔄 Migrations applied", zap.Int("count", n))
		}

		runs = repository.NewReportRunRepository(db)
		checks["database"] = databaseCheck(db)
	}

	// Report archive
	var archive reporting.Archiver
	var keyFunc reporting.KeyFunc
	if cfg.Storage.Enabled {
		logger.Info("📦 Connecting to object storage...")
		reportArchive, err := storage.NewReportArchive(ctx, &cfg.Storage, logger)
		if err != nil {
			logger.Fatal("Failed to initialize report archive", zap.Error(err))
		}
		archive = reportArchive
		keyFunc = storage.ObjectKey
		checks["storage"] = reportArchive.Ping
	}

	reports := reporting.NewService(orchestrator, runs, archive, keyFunc, logger)
	guard := access.NewGuard(cfg.Access, limiter, logger)

	// Telegram bot
	botDone := make(chan struct{})
	if cfg.TelegramEnabled() {
		api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			logger.Fatal("Failed to connect to Telegram", zap.Error(err))
		}
		api.Debug = cfg.Telegram.Debug
		logger.Info("🤖 Authorized on Telegram", zap.String("username", api.Self.UserName))

		bot := telegram.New(api, reports, guard, nil, telegram.Options{
			PollTimeout:    cfg.Telegram.PollTimeout,
			MaxVoiceBytes:  cfg.Server.MaxUploadBytes,
			RequestTimeout: cfg.Pipeline.TranscribeTimeout + cfg.Pipeline.ExtractTimeout + 30*time.Second,
		}, logger)

		go func() {
			defer close(botDone)
			if err := bot.Run(ctx); err != nil {
				logger.Error("Telegram bot stopped with error", zap.Error(err))
			}
		}()
	} else {
		close(botDone)
		logger.Warn("⚠️ BOT_TOKEN is not set, Telegram bot disabled")
	}

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(logger)
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${id} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{echo.HeaderContentDisposition, handler.HeaderRunID, handler.HeaderTranscriptExcerpt, handler.HeaderReportURL},
	}))
	// Room for multipart framing on top of the voice file itself.
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", cfg.Server.MaxUploadBytes/1024+64)))

	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry, cfg.JWT.Issuer)

	router := handler.NewRouter(cfg,
		handler.NewReportHandler(reports, cfg.Server.MaxUploadBytes, logger),
		httpmw.EchoAuth(jwtManager),
		pkgmw.RequireAccess(guard),
		checks,
		logger,
	)
	router.Setup(e)

	// Start server
	go func() {
		addr := cfg.GetServerAddr()
		logger.Info("🚀 Starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
		)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Server forced to shutdown", zap.Error(err))
	}

	select {
	case <-botDone:
	case <-shutdownCtx.Done():
		logger.Warn("⚠️ Telegram bot did not finish in time")
	}

	logger.Info("✅ Stopped gracefully")
}

// buildPipeline wires recognizer, extractor and renderer from configuration
func buildPipeline(cfg *config.Config, logger *zap.Logger) (*pipeline.Orchestrator, error) {
	converter := media.NewConverter(cfg.Speech.FFmpegPath, logger)
	if !converter.Available() {
		logger.Warn("⚠️ ffmpeg not found, every voice message will fail to decode",
			zap.String("path", cfg.Speech.FFmpegPath),
		)
	}

	var recognizer transcription.Recognizer
	switch cfg.Speech.Recognizer {
	case "assemblyai":
		recognizer = pkgai.NewAssemblyAIRecognizer(cfg.Speech.AssemblyAIKey, cfg.Speech.Language, logger)
	default:
		recognizer = pkgai.NewWhisperRecognizer(pkgai.WhisperConfig{
			APIKey:   cfg.Speech.WhisperAPIKey,
			BaseURL:  cfg.Speech.WhisperBaseURL,
			Model:    cfg.Speech.WhisperModel,
			Language: cfg.Speech.Language,
		}, logger)
	}
	logger.Info("🎙️ Speech recognizer selected", zap.String("recognizer", recognizer.Name()))

	prompt, err := extraction.LoadSystemPrompt(cfg.LLM.SystemPromptPath)
	if err != nil {
		return nil, err
	}

	chat := pkgai.NewChatClient(pkgai.ChatConfig{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		MaxRetryElapsed: cfg.LLM.MaxRetryElapsed,
	}, logger)

	return pipeline.NewOrchestrator(
		transcription.NewService(converter, recognizer, cfg.Speech.Language, logger),
		extraction.NewService(chat, prompt, cfg.LLM.RecomputeTotal, logger),
		report.NewRenderer(logger),
		pipeline.Options{
			TranscribeTimeout: cfg.Pipeline.TranscribeTimeout,
			ExtractTimeout:    cfg.Pipeline.ExtractTimeout,
			ExcerptLength:     cfg.Pipeline.ExcerptLength,
		},
		logger,
	), nil
}

func redisCheck(rdb *goredis.Client) handler.HealthCheck {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}

func databaseCheck(db *gorm.DB) handler.HealthCheck {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
