package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"visionvend/config"
	"visionvend/handlers"
	"visionvend/models"
	"visionvend/routes"
	"visionvend/services/payment"
	"visionvend/services/session"
	"visionvend/services/simulator"
	"visionvend/services/snapshot"
	"visionvend/utils"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var CLI struct {
	Seed             int64   `help:"Seed for simulated failures (0 picks one from the clock)" default:"0"`
	TrainFailureRate float64 `help:"Override SIM_TRAIN_FAILURE_RATE" default:"-1"`

	Serve struct {
		Port      string `short:"p" help:"Listen port (defaults to APP_PORT)"`
		Snapshots bool   `help:"Publish snapshots to redis"`
	} `cmd:"" default:"1" help:"Serve the kiosk API plus simulator controls"`

	Run struct {
		Items   []string      `arg:"" optional:"" help:"Items taken from the shelf"`
		Timeout time.Duration `help:"Give up after this long" default:"30s"`
	} `cmd:"" help:"Run one simulated purchase and print the receipt"`
}

var defaultCatalog = map[string]string{
	"coke":  "1.50",
	"chips": "2.00",
	"water": "1.00",
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("simulator"),
		kong.Description("VisionVend kiosk simulator"),
	)

	config.LoadConfig()
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := newSource(logger.Named("simulator"))
	if err != nil {
		logger.Fatal("simulator: invalid configuration", zap.Error(err))
	}

	switch kctx.Command() {
	case "serve":
		err = serve(ctx, logger, source)
	case "run", "run <items>":
		err = runPurchase(ctx, logger, source)
	default:
		err = fmt.Errorf("unknown command %q", kctx.Command())
	}
	if err != nil {
		logger.Error("simulator: failed", zap.Error(err))
		os.Exit(1)
	}
}

func newSource(logger *zap.Logger) (*simulator.Source, error) {
	cfg := config.AppConfig

	prices := cfg.Inventory
	if len(prices) == 0 {
		prices = defaultCatalog
	}
	catalog, err := simulator.ParseCatalog(prices)
	if err != nil {
		return nil, err
	}

	seed := CLI.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rate := cfg.SimTrainFailureRate
	if CLI.TrainFailureRate >= 0 {
		rate = CLI.TrainFailureRate
	}
	resolver := simulator.NewRandomResolver(rand.New(rand.NewSource(seed)), simulator.DefaultRates(rate))

	delays := simulator.Delays{
		Tap:   cfg.SimTapDelay,
		Door:  cfg.SimDoorDelay,
		Track: cfg.SimTrackDelay,
		Train: cfg.SimTrainDelay,
	}
	logger.Info("simulator: configured", zap.Int64("seed", seed), zap.Float64("trainFailureRate", rate), zap.Int("catalog", len(catalog)))
	return simulator.NewSource(resolver, delays, catalog, logger), nil
}

func serve(ctx context.Context, logger *zap.Logger, source *simulator.Source) error {
	cfg := config.AppConfig
	port := CLI.Serve.Port
	if port == "" {
		port = cfg.AppPort
	}

	// The simulator answers POST /save-payment itself.
	saver := payment.NewClient(source, "http://127.0.0.1:"+port, cfg.PaymentTimeout, logger.Named("payment"))

	opts := session.Options{Authenticated: cfg.PreAuthenticated}
	var store *snapshot.RedisStore
	if CLI.Serve.Snapshots {
		client := utils.GetSnapshotClient()
		utils.StartHealthMonitor(ctx, client, time.Minute)
		store = snapshot.NewRedisStore(client, cfg.KioskID, cfg.SnapshotTTL, logger.Named("snapshot"))
		opts.Observers = append(opts.Observers, store)
	}

	machine := session.NewMachine(source, saver, logger.Named("session"), opts)
	source.Attach(machine)

	g, gctx := errgroup.WithContext(ctx)

	var reader handlers.SnapshotReader
	if store != nil {
		reader = store
		g.Go(func() error { return store.Run(gctx) })
	}
	kioskHandler := handlers.NewKioskHandler(machine, reader)
	simHandler := handlers.NewSimHandler(gctx, machine, source)
	handlerBundle := &handlers.HandlerBundle{
		GetSessionHandler:        kioskHandler.GetSessionHandler,
		GetStoredSnapshotHandler: kioskHandler.GetStoredSnapshotHandler,
		PostEventHandler:         kioskHandler.PostEventHandler,
		IssueTokenHandler:        handlers.IssueTokenHandler,

		SimTapHandler:         simHandler.TapHandler,
		SimDoorHandler:        simHandler.DoorHandler,
		SimTrackHandler:       simHandler.TrackHandler,
		SimCloseHandler:       simHandler.CloseHandler,
		SimTrainHandler:       simHandler.TrainHandler,
		SimSavePaymentHandler: handlers.SavePaymentHandler,
	}

	router := routes.NewRouter(logger, cfg.MaxRequestsPerMin)
	routes.RegisterRoutes(router, handlerBundle)
	srv := &http.Server{Addr: "0.0.0.0:" + port, Handler: router}

	g.Go(func() error {
		err := machine.Run(gctx)
		source.Wait()
		return err
	})
	g.Go(func() error {
		logger.Info("simulator: listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// runPurchase drives one tap, door, track and close cycle headless and prints the receipt.
func runPurchase(ctx context.Context, logger *zap.Logger, source *simulator.Source) error {
	ctx, cancel := context.WithTimeout(ctx, CLI.Run.Timeout)
	defer cancel()

	machine := session.NewMachine(source, noPayments{}, logger.Named("session"), session.Options{Authenticated: true})
	source.Attach(machine)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return machine.Run(gctx) })
	g.Go(func() error {
		defer cancel()
		receipt, err := purchase(gctx, machine, source, CLI.Run.Items)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(receipt, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	})
	err := g.Wait()
	source.Wait()
	return err
}

func purchase(ctx context.Context, machine *session.Machine, source *simulator.Source, items []string) (models.Snapshot, error) {
	if _, err := machine.Submit(ctx, models.Event{Name: models.EventScanTrigger}); err != nil {
		return models.Snapshot{}, err
	}
	snap, err := waitFor(ctx, machine, func(s models.Snapshot) bool { return !s.UnlockPending })
	if err != nil {
		return snap, err
	}
	if snap.Screen != models.ScreenTransaction {
		return snap, fmt.Errorf("unlock failed: %s", snap.Message)
	}

	if err := source.OpenDoor(ctx); err != nil {
		return snap, err
	}
	if len(items) > 0 {
		if _, err := source.Track(ctx, items); err != nil {
			return snap, err
		}
		if _, err := waitFor(ctx, machine, func(s models.Snapshot) bool {
			return s.StatusBoard[models.SubsystemTransaction] == models.StatusSuccess
		}); err != nil {
			return snap, err
		}
	}
	return machine.Submit(ctx, models.Event{Name: models.EventClose})
}

func waitFor(ctx context.Context, machine *session.Machine, cond func(models.Snapshot) bool) (models.Snapshot, error) {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		snap := machine.Snapshot()
		if cond(snap) {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-ticker.C:
		}
	}
}

// noPayments rejects payment setup; the headless run is pre-authenticated.
type noPayments struct{}

func (noPayments) Save(context.Context, models.CardInput) models.PaymentOutcome {
	return models.PaymentOutcome{Stage: models.StageTokenization, Status: models.OutcomeFailure, Detail: "payments disabled"}
}
