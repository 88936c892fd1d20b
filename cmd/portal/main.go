package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eara_connect_portal/internal/app"
	"eara_connect_portal/internal/domain/notification"
	"eara_connect_portal/internal/domain/report"
	"eara_connect_portal/internal/infra/backend"
	"eara_connect_portal/internal/infra/cache"
	"eara_connect_portal/internal/infra/config"
	idb "eara_connect_portal/internal/infra/database"
	"eara_connect_portal/internal/infra/logger"
	"eara_connect_portal/internal/infra/redisstore"
	"eara_connect_portal/internal/infra/scheduler"
	"eara_connect_portal/internal/infra/session"
	"eara_connect_portal/internal/infra/telegram"
	"eara_connect_portal/internal/infra/web"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"gopkg.in/telebot.v3"
)

const (
	shutdownTimeout = 15 * time.Second
	tokenTTL        = 8 * time.Hour
	fetchTimeout    = 20 * time.Second
)

func main() {
	fmt.Println("EARA Connect portal starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
		"api":         cfg.APIBaseURL,
	}).Info("Configuration loaded")

	// No span exporter is configured; the propagator alone forwards incoming W3C trace headers to the backend.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Backend client and shared query cache
	client := backend.New(backend.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.BackendTimeout,
		Logger:  logger.Component("backend"),
	})
	queryCache := cache.New(cfg.CacheSize, cfg.CacheTTL, fetchTimeout, logger.Component("cache"))

	// Optional portal database: review history and Telegram subscriptions
	var (
		db       *sql.DB
		history  report.HistoryRepository
		subsRepo notification.SubscriptionRepository
	)
	if cfg.DatabaseURL != "" {
		db, err = idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not connect to database")
		}
		defer db.Close()
		if err := idb.Migrate(ctx, db); err != nil {
			mainLogger.WithError(err).Fatal("Could not apply database schema")
		}
		history = idb.NewPostgresReviewHistoryRepository(db)
		subsRepo = idb.NewPostgresSubscriptionRepository(db)
		mainLogger.Info("Database connection established and repositories initialized.")
	} else {
		mainLogger.Info("DATABASE_URL not set; review history and Telegram relay disabled.")
	}

	// Optional Redis: link codes, dashboard snapshots and the scheduler lock
	var (
		rdb       *redis.Client
		codes     app.LinkCodeStore
		snapshots app.SnapshotStore
		locker    scheduler.Locker
	)
	if cfg.RedisURL != "" {
		rdb, err = redisstore.Connect(ctx, cfg.RedisURL)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not connect to Redis")
		}
		defer rdb.Close()
		store := redisstore.New(rdb)
		codes, snapshots = store, store
		locker = redisstore.NewLocker(rdb)
		mainLogger.Info("Redis connection established.")
	}

	// Application services
	reports := app.NewReportService(client, history, queryCache, logger.Component("reports"))
	resolutions := app.NewResolutionService(client, queryCache, logger.Component("resolutions"))
	meetings := app.NewMeetingService(client, queryCache, logger.Component("meetings"))
	countries := app.NewCountryService(client, queryCache, logger.Component("countries"))
	notifications := app.NewNotificationService(client, queryCache, logger.Component("notifications"))
	dashboards := app.NewDashboardService(client, reports, resolutions, meetings, countries, notifications,
		queryCache, snapshots, logger.Component("dashboards"))
	subscriptions := app.NewSubscriptionService(subsRepo, codes, cfg.AdminTelegramID)

	svc := web.Services{
		Auth:          app.NewAuthService(client, logger.Component("auth")),
		Reports:       reports,
		Resolutions:   resolutions,
		Meetings:      meetings,
		Invitations:   app.NewInvitationService(client, queryCache, logger.Component("invitations")),
		Countries:     countries,
		Notifications: notifications,
		Profile:       app.NewProfileService(client, cfg.APIOrigin(), cfg.DefaultPhoneRegion, logger.Component("profile")),
		Dashboards:    dashboards,
		Subscriptions: subscriptions,
	}

	// Optional Telegram bot and notification relay
	var (
		bot   *telebot.Bot
		relay scheduler.Relay
	)
	if cfg.RelayEnabled() {
		botLogger := logger.Component("telegram")
		pref := telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				entry := botLogger.WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					entry = entry.WithFields(logrus.Fields{"text": c.Text(), "sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
				}
				entry.Error("Telegram handler failed")
			},
		}
		bot, err = telebot.NewBot(pref)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}

		relayService := app.NewRelayService(subsRepo, client, telegram.NewTelebotAdapter(bot), queryCache,
			cfg.PublicURL, logger.Component("relay"))
		relay = relayService

		telegram.RegisterBotCommands(ctx, bot, subscriptions, relayService, cfg.PublicURL, botLogger)
		telegram.RegisterAdminHandlers(ctx, bot, subscriptions, botLogger)
		telegram.RegisterCallbackHandlers(ctx, bot, relayService, botLogger)
		mainLogger.Info("Telegram command handlers registered.")
	} else {
		mainLogger.Info("TELEGRAM_TOKEN not set; Telegram relay disabled.")
	}

	// Scheduler
	jobs := scheduler.NewPortalScheduler(relay, dashboards, locker, logger.Component("scheduler"), scheduler.Specs{
		Relay:        cfg.CronSpecRelay,
		QueueRefresh: cfg.CronSpecQueueRefresh,
		StatsRefresh: cfg.CronSpecStatsRefresh,
		Digest:       cfg.CronSpecDigest,
	})
	if err := jobs.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scheduler")
	}

	// HTTP server
	sessionStore := session.NewCookieStore([]byte(cfg.SessionSecret), cfg.CookieSecure)
	server, err := web.NewServer(svc, web.Options{
		Sessions:       session.NewManager(sessionStore),
		Tokens:         session.NewTokenIssuer(cfg.JWTSecret, tokenTTL),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Production:     cfg.IsProduction(),
		Logger:         logger.Component("http"),
	})
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not build HTTP server")
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		mainLogger.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mainLogger.WithError(err).Error("HTTP server stopped")
			stop()
		}
	}()

	if bot != nil {
		// Start bot in a goroutine so it doesn't block graceful shutdown handling
		go bot.Start()
	}

	mainLogger.Info("Application setup complete.")
	<-ctx.Done()

	mainLogger.Info("Shutting down application...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	if bot != nil {
		bot.Stop()
	}
	jobs.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
