package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"visionvend/config"
	"visionvend/handlers"
	"visionvend/routes"
	"visionvend/services/payment"
	"visionvend/services/session"
	"visionvend/services/snapshot"
	"visionvend/services/unlock"
	"visionvend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := utils.GetSnapshotClient()
	utils.StartHealthMonitor(ctx, redisClient, time.Minute)
	store := snapshot.NewRedisStore(redisClient, cfg.KioskID, cfg.SnapshotTTL, logger.Named("snapshot"))

	// collaborators
	unlocker := unlock.NewClient(cfg.BackendURL, cfg.UnlockTimeout, logger.Named("unlock"))
	tokenizer := payment.NewStripeTokenizer(cfg.StripeKey, nil)
	saver := payment.NewClient(tokenizer, cfg.BackendURL, cfg.PaymentTimeout, logger.Named("payment"))

	machine := session.NewMachine(unlocker, saver, logger.Named("session"), session.Options{
		Authenticated: cfg.PreAuthenticated,
		Observers:     []session.Observer{store},
	})

	kioskHandler := handlers.NewKioskHandler(machine, store)
	handlerBundle := &handlers.HandlerBundle{
		GetSessionHandler:        kioskHandler.GetSessionHandler,
		GetStoredSnapshotHandler: kioskHandler.GetStoredSnapshotHandler,
		PostEventHandler:         kioskHandler.PostEventHandler,
	}
	if !config.IsProduction() {
		handlerBundle.IssueTokenHandler = handlers.IssueTokenHandler
	}

	router := routes.NewRouter(logger, cfg.MaxRequestsPerMin)
	routes.RegisterRoutes(router, handlerBundle)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return machine.Run(gctx) })
	g.Go(func() error { return store.Run(gctx) })
	g.Go(func() error {
		logger.Info("main: starting server", zap.String("addr", srv.Addr), zap.String("kiosk", cfg.KioskID))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("main: server is shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("main: server stopped with error", zap.Error(err))
	}
	logger.Info("main: server stopped gracefully")
}
