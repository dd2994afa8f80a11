// Command btcwatcher runs the Bitcoin watcher process: it polls Esplora
// for deposit and spend activity against every Bitcoin-chain order's
// P2TR HTLC address (spec §4.3).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/klingonswap/bridge/internal/btcwatch"
	"github.com/klingonswap/bridge/internal/chainmodel"
	"github.com/klingonswap/bridge/internal/config"
	"github.com/klingonswap/bridge/internal/order"
	"github.com/klingonswap/bridge/internal/scheduler"
	"github.com/klingonswap/bridge/pkg/logging"
)

type options struct {
	Chain        string        `long:"chain" env:"WATCHER_CHAIN" default:"bitcoin_testnet" description:"Bitcoin chain id to watch"`
	EsploraURL   string        `long:"esplora-url" env:"BRIDGE_BTC_ESPLORA_URL" required:"true" description:"Esplora-compatible REST endpoint"`
	PollInterval time.Duration `long:"poll-interval" env:"WATCHER_POLL_INTERVAL" default:"10s" description:"how often to poll Esplora"`
	DataDir      string        `long:"data-dir" env:"WATCHER_DATA_DIR" default:"./data/orderbook" description:"sqlite data directory (shared with the orderbook)"`
	AssetsFile   string        `long:"assets-file" env:"BRIDGE_ASSETS_FILE" default:"configs/assets.yaml" description:"asset registry seed file"`
	LogLevel     string        `long:"log-level" env:"BRIDGE_LOG_LEVEL" default:"info" description:"debug, info, warn, error"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	log := logging.New(&logging.Config{Level: opts.LogLevel, TimeFormat: time.TimeOnly})

	if err := config.LoadAssetFile(opts.AssetsFile); err != nil {
		log.Fatal("loading asset file", "error", err)
	}

	chain := chainmodel.ChainId(opts.Chain)
	if !chainmodel.IsSupported(chain) {
		log.Fatal("unknown chain", "chain", opts.Chain)
	}

	store, err := order.OpenSQLiteStore(opts.DataDir)
	if err != nil {
		log.Fatal("opening order store", "error", err)
	}
	defer store.Close()

	client := btcwatch.NewEsploraClient(opts.EsploraURL)
	watcher := btcwatch.NewWatcher(client, store, chain, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
	}()

	scheduler.Run(ctx, opts.PollInterval, watcher.Poll, func(err error) {
		log.Warn("watcher poll failed", "error", err)
	})

	log.Info("btcwatcher stopped", "chain", chain)
}
