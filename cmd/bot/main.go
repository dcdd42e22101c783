package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"

	"github.com/ibericokitchen/inventory-bot/internal/config"
	"github.com/ibericokitchen/inventory-bot/internal/logger"
	"github.com/ibericokitchen/inventory-bot/internal/modules/bot"
	"github.com/ibericokitchen/inventory-bot/internal/modules/catalog"
	"github.com/ibericokitchen/inventory-bot/internal/modules/ingest"
	"github.com/ibericokitchen/inventory-bot/internal/modules/inventory"
	"github.com/ibericokitchen/inventory-bot/internal/modules/report"
	"github.com/ibericokitchen/inventory-bot/internal/modules/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.WithError(err).Fatal("ping database")
	}
	log.Info("connected to the database")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Domain services ─────────────────────────────────────
	catalogRepo := catalog.NewPostgresRepository(db)
	catalogService := catalog.NewService(catalogRepo)

	inventoryRepo := inventory.NewPostgresRepository(db)
	inventoryService := inventory.NewService(inventoryRepo)

	ingestRepo := ingest.NewPostgresRepository(db)

	extractor := report.NewOpenAIExtractor(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	reportService := report.NewService(extractor, log)

	// ── Chat pipeline ───────────────────────────────────────
	transport, err := bot.NewTelegramTransport(cfg.TelegramBotToken)
	if err != nil {
		log.WithError(err).Fatal("telegram transport")
	}

	sessions := session.NewMemoryStore()
	chatRouter := bot.NewRouter(
		transport,
		sessions,
		catalogService,
		inventoryService,
		ingestRepo,
		reportService,
		time.Duration(cfg.VisionTimeoutSeconds)*time.Second,
		log,
	)
	dispatcher := bot.NewDispatcher(chatRouter.Handle, log)
	bot.NewHandler(dispatcher, cfg.TelegramWebhookSecret, log).RegisterRoutes(router)

	// ── Start server ────────────────────────────────────────
	log.WithField("address", cfg.Address).Info("inventory bot starting")
	if err := http.ListenAndServe(cfg.Address, router); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
