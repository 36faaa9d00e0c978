package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/osama-agency/telesklad/internal/config"
	"github.com/osama-agency/telesklad/internal/tracing"
	"github.com/osama-agency/telesklad/internal/transport/api"
)

const (
	serviceName = "telesklad"

	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

// Run поднимает http api и фоновый исполнитель задач и работает до сигнала остановки или ошибки одного из них.
func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.WithFields(logrus.Fields{
		"runAddress":  a.Config.RunAddress,
		"migrations":  a.Config.MigrationsDir,
		"loyalty":     a.Config.LoyaltyConfig,
		"jobWorkers":  a.Config.JobWorkers,
		"jobInterval": a.Config.JobPollInterval,
	}).Info("Starting app")

	tp, tpErr := tracing.InitTracerProvider(serviceName, a.Config.JaegerEndpoint)
	if tpErr != nil {
		return fmt.Errorf("app run: %w", tpErr)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
			a.Logger.WithError(err).Error("tracing shutdown")
		}
	}()

	c, buildErr := Build(notifyCtx, a.Config, a.Logger)
	if buildErr != nil {
		return fmt.Errorf("app run: %w", buildErr)
	}
	defer c.Close()

	router, routerErr := api.New(api.RouterArgs{
		Logger:              a.Logger,
		PurchaseService:     c.Services.PurchaseService,
		OrderService:        c.Services.OrderService,
		NotificationService: c.Services.NotificationService,
		LoyaltyService:      c.Services.LoyaltyService,
		Jobs:                c.Runner,
		MetricsHandler:      c.Metrics.Handler(),
		JWTSecretKey:        []byte(a.Config.AdminJWTSecret),
	})
	if routerErr != nil {
		return fmt.Errorf("app run: %w", routerErr)
	}

	server := &http.Server{
		Addr:              a.Config.RunAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, ctx := errgroup.WithContext(notifyCtx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		c.Runner.Run(ctx)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err //nolint:wrapcheck
	}
	return notifyCtx.Err() //nolint:wrapcheck
}
