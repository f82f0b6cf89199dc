// Package server wires configuration, storage, queues, real-time hubs and
// the HTTP router into a runnable application.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kopisahaja/kopisahaja/app/controllers"
	"github.com/kopisahaja/kopisahaja/app/repositories"
	"github.com/kopisahaja/kopisahaja/app/routes"
	"github.com/kopisahaja/kopisahaja/app/services"
	"github.com/kopisahaja/kopisahaja/config"
	"github.com/kopisahaja/kopisahaja/pkg/cache"
	"github.com/kopisahaja/kopisahaja/pkg/database"
	"github.com/kopisahaja/kopisahaja/pkg/logger"
	"github.com/kopisahaja/kopisahaja/pkg/metrics"
	"github.com/kopisahaja/kopisahaja/pkg/middleware"
	"github.com/kopisahaja/kopisahaja/pkg/notification"
	"github.com/kopisahaja/kopisahaja/pkg/queue"
	"github.com/kopisahaja/kopisahaja/pkg/reqid"
	"github.com/kopisahaja/kopisahaja/pkg/router"
	"github.com/kopisahaja/kopisahaja/pkg/schedule"
	"github.com/kopisahaja/kopisahaja/pkg/session"
	"github.com/kopisahaja/kopisahaja/pkg/storage"
	"github.com/kopisahaja/kopisahaja/pkg/telegram"
	"github.com/kopisahaja/kopisahaja/pkg/ws"
)

// App holds the wired application graph.
type App struct {
	Router   *router.Router
	OrderHub *ws.Hub
	StaffHub *ws.Hub
	Orders   *services.OrderService
	Auth     *services.AuthService
	Bot      *telegram.Bot
}

// hubBroadcaster adapts the two hubs to the service-layer interface:
// staff events fan out to every dashboard, order events go to the room
// customers joined for that order.
type hubBroadcaster struct {
	orders *ws.Hub
	staff  *ws.Hub
}

func (b hubBroadcaster) ToStaff(data []byte) { b.staff.Broadcast <- data }

func (b hubBroadcaster) ToOrder(orderID string, data []byte) {
	b.orders.ToRoom(orderID, data)
}

// New wires the object graph. It performs no I/O, so commands like
// route:list can call it without a database.
func New() *App {
	userRepo := repositories.NewUserRepository()
	drinkRepo := repositories.NewDrinkRepository()
	orderRepo := repositories.NewOrderRepository()
	resetRepo := repositories.NewPasswordResetRepository()

	orderHub := ws.NewHub()
	staffHub := ws.NewHub()

	orderSvc := services.NewOrderService(orderRepo, drinkRepo,
		hubBroadcaster{orders: orderHub, staff: staffHub}, queue.Dispatch)
	authSvc := services.NewAuthService(userRepo, resetRepo)

	r := router.New()
	r.Use(
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		session.Middleware(session.DefaultOptions()),
		middleware.CORS(middleware.DefaultCORSOptions()),
		middleware.RateLimit(300, time.Minute),
	)
	r.Get("/metrics", "metrics", metrics.Handler())

	routes.RegisterAPI(r, routes.Controllers{
		Auth:  controllers.NewAuthController(authSvc),
		Drink: controllers.NewDrinkController(drinkRepo),
		Order: controllers.NewOrderController(orderSvc, authSvc),
		Admin: controllers.NewAdminController(orderSvc, authSvc),
		WS:    controllers.NewWSController(orderHub, staffHub),
	})

	return &App{
		Router:   r,
		OrderHub: orderHub,
		StaffHub: staffHub,
		Orders:   orderSvc,
		Auth:     authSvc,
		Bot:      telegram.New(config.TelegramBotToken()),
	}
}

// Start boots every subsystem and serves HTTP until SIGINT/SIGTERM, then
// shuts down gracefully.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	attachMongoSink()

	if err := database.Connect(); err != nil {
		return err
	}
	if err := cache.Connect(); err != nil {
		logger.Warn("server: redis unavailable, caching and sessions degrade to no-ops", "error", err)
	}
	storage.Connect()

	queue.UseDB(database.DB)
	if config.QueueDriver() == "redis" && cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}

	app := New()
	notification.SetTelegramBot(app.Bot)
	registerListeners()

	go app.OrderHub.Run()
	go app.StaffHub.Run()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue.StartWorkers(ctx, config.QueueWorkers())

	schedule.Hourly().Name("purge-expired-password-resets").Run(func() {
		if err := app.Auth.PurgeExpiredResets(); err != nil {
			logger.Error("server: purge expired resets", "error", err)
		}
	})
	schedule.Start(ctx)

	go runBot(ctx, app)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           app.Router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server: listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// attachMongoSink adds the async MongoDB log handler when configured.
func attachMongoSink() {
	uri := config.LogMongoURI()
	if uri == "" {
		return
	}

	h, err := logger.NewMongoHandler(uri, config.LogMongoDatabase(), config.LogMongoCollection())
	if err != nil {
		logger.Warn("server: mongo log sink disabled", "error", err)
		return
	}

	logger.L = slog.New(logger.NewMultiHandler(logger.L.Handler(), h))
	slog.SetDefault(logger.L)
}
