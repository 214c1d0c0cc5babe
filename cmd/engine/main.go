package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rxtech-lab/paper-trading/internal/broadcast"
	"github.com/rxtech-lab/paper-trading/internal/config"
	"github.com/rxtech-lab/paper-trading/internal/engine"
	"github.com/rxtech-lab/paper-trading/internal/exchange"
	"github.com/rxtech-lab/paper-trading/internal/ledger"
	"github.com/rxtech-lab/paper-trading/internal/logger"
	"github.com/rxtech-lab/paper-trading/internal/server"
	"github.com/rxtech-lab/paper-trading/internal/version"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// serveAction wires the engine together and runs it until interrupted.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Default()

	if path := cmd.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}

		cfg = loaded
	}

	if addr := cmd.String("listen"); addr != "" {
		cfg.ListenAddr = addr
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	appLogger.Info("starting trading engine",
		zap.String("version", version.Version),
		zap.String("listen_addr", cfg.ListenAddr),
		zap.Bool("live_trading", cfg.LiveTrading))

	gateway, err := exchange.NewBinanceGateway(cfg.GatewayConfig(), cfg.UseTestnet)
	if err != nil {
		return err
	}

	store := ledger.NewMemoryLedger(cfg.LedgerConfig())
	hub := broadcast.NewHub(appLogger)
	defer hub.Close()

	fees := exchange.GetFeeSchedule(cfg.FeeVenue)
	executor := engine.NewExecutor(store, hub, gateway, fees, appLogger, cfg.LiveTrading)

	sync := engine.NewMarketSync(gateway, store, hub, appLogger, cfg.SyncConfig())

	srv := server.NewServer(store, executor, sync, gateway, hub, appLogger)
	if err := srv.Start(cfg.ListenAddr); err != nil {
		return err
	}

	syncCtx, cancelSync := context.WithCancel(ctx)
	sync.Start(syncCtx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		appLogger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}

	cancelSync()
	sync.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

func main() {
	cmd := &cli.Command{
		Name:    "engine",
		Usage:   "Run the paper trading engine",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the YAML config file",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "listen",
				Aliases:  []string{"l"},
				Usage:    "HTTP listen address, overrides the config file",
				Required: false,
			},
		},
		Action: serveAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
