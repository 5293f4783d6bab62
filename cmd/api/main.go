package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/quickdesk/helpdesk/internal/api/http"
	"github.com/quickdesk/helpdesk/internal/api/http/handlers"
	"github.com/quickdesk/helpdesk/internal/auth"
	"github.com/quickdesk/helpdesk/internal/cache"
	"github.com/quickdesk/helpdesk/internal/config"
	"github.com/quickdesk/helpdesk/internal/events"
	"github.com/quickdesk/helpdesk/internal/mail"
	"github.com/quickdesk/helpdesk/internal/observability"
	"github.com/quickdesk/helpdesk/internal/persistence"
	"github.com/quickdesk/helpdesk/internal/repository"
	"github.com/quickdesk/helpdesk/internal/service"
	"github.com/quickdesk/helpdesk/internal/sla"
	"github.com/quickdesk/helpdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	store := repository.NewStore(pg.PoolHandle())
	dashboard := cache.NewDashboardCache(redis.Client, logger)
	unread := cache.NewUnreadCounter(redis.Client, logger)

	dispatcher := events.NewInMemoryDispatcher()
	outbox := mail.NewOutbox(cfg.Outbox.QueueSize, logger)
	notifier := mail.NewNotifier(outbox, logger)
	notifier.RegisterHandlers(dispatcher)

	mailWorker := worker.NewMailWorker(outbox, mail.FromConfig(cfg.SMTP, logger), logger)
	mailWorker.Start(ctx)

	policy := sla.FromConfig(cfg.SLA.CriticalHours, cfg.SLA.HighHours, cfg.SLA.MediumHours, cfg.SLA.LowHours)

	activityService := service.NewActivityService(store, logger)
	authService := service.NewAuthService(cfg.Auth, store, activityService)
	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		Store:      store,
		Policy:     policy,
		Dispatcher: dispatcher,
		Dashboard:  dashboard,
		Unread:     unread,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(store, unread)
	categoryService := service.NewCategoryService(store)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store.Users())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(lifecycleService),
		StaffTickets:   handlers.NewStaffTicketsHandler(lifecycleService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Activity:       handlers.NewActivityHandler(activityService),
		Dashboard:      handlers.NewDashboardHandler(lifecycleService),
		Categories:     handlers.NewCategoriesHandler(categoryService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	mailWorker.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
