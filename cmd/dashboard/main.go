package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"certificados_dashboard/internal/app"
	"certificados_dashboard/internal/infra/config"
	idb "certificados_dashboard/internal/infra/database"
	"certificados_dashboard/internal/infra/export"
	"certificados_dashboard/internal/infra/logger"
	"certificados_dashboard/internal/infra/metrics"
	"certificados_dashboard/internal/infra/scheduler"
	"certificados_dashboard/internal/infra/telegram"
	"certificados_dashboard/internal/infra/web"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
		"driver":      cfg.Database.Driver,
		"cache_ttl":   cfg.CacheTTL.String(),
	}).Info("Configuration loaded.")

	// The connection is opened lazily on the first query; a failure there
	// leaves the dashboard running without data.
	provider := idb.NewProvider(cfg.Database, logger.Component("database"))
	defer provider.Close()

	certificateRepo := idb.NewCertificateRepository(provider)
	appMetrics := metrics.New()
	reportService := app.NewReportService(
		certificateRepo,
		export.XLSX{},
		app.NewResultCache(cfg.CacheTTL),
		appMetrics,
		logger.Component("report_service"),
	)
	mainLogger.Info("Report service initialized.")

	var monthlyReporter scheduler.MonthlyReporter
	var bot *telebot.Bot
	if cfg.TelegramEnabled() {
		botLogger := logger.Component("telegram")
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				entry := botLogger.WithError(err)
				if c != nil && c.Sender() != nil {
					entry = entry.WithField("sender_id", c.Sender().ID)
				}
				entry.Error("Telegram handler error")
			},
		})
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
		telegram.RegisterBotCommands(bot, cfg.AdminTelegramID, botLogger)
		telegram.RegisterReportHandlers(bot, reportService, cfg.AdminTelegramID, botLogger)
		monthlyReporter = app.NewDeliveryService(
			reportService,
			telegram.NewTelebotAdapter(bot),
			cfg.AdminTelegramID,
			logger.Component("delivery"),
		)
		mainLogger.Info("Telegram bot handlers registered.")
	}

	reportScheduler := scheduler.NewReportScheduler(
		reportService,
		monthlyReporter,
		logger.Component("scheduler"),
		cfg.CachePurgeSpec,
		cfg.CronSpecMonthlyReport,
	)
	if err := reportScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scheduler")
	}

	handler := web.NewHandler(reportService, logger.Component("web"))
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           web.NewRouter(handler, appMetrics.Handler(), logger.Component("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		mainLogger.WithField("addr", cfg.HTTPAddr).Info("Dashboard listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mainLogger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	if bot != nil {
		go bot.Start()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLogger.Info("Shutting down application...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		mainLogger.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	if bot != nil {
		bot.Stop()
	}
	reportScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
