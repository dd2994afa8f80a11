// Command evmwatcher runs one EVM chain watcher process: it polls an
// AtomicSwap/Registry pair for Initiated/Redeemed/Refunded/UDACreated
// events and projects them onto Order rows (spec §4.2). One process per
// configured EVM chain.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/klingonswap/bridge/internal/chainmodel"
	"github.com/klingonswap/bridge/internal/config"
	"github.com/klingonswap/bridge/internal/evmwatch"
	"github.com/klingonswap/bridge/internal/htlc"
	"github.com/klingonswap/bridge/internal/order"
	"github.com/klingonswap/bridge/internal/scheduler"
	"github.com/klingonswap/bridge/pkg/logging"

	"github.com/ethereum/go-ethereum/common"
)

type options struct {
	Chain      string `long:"chain" env:"WATCHER_CHAIN" required:"true" description:"chain id to watch, e.g. avalanche_testnet"`
	StartBlock uint64 `long:"start-block" env:"WATCHER_START_BLOCK" required:"true" description:"first block to scan"`
	DataDir    string `long:"data-dir" env:"WATCHER_DATA_DIR" default:"./data/orderbook" description:"sqlite data directory (shared with the orderbook)"`
	AssetsFile string `long:"assets-file" env:"BRIDGE_ASSETS_FILE" default:"configs/assets.yaml" description:"asset registry seed file"`
	LogLevel   string `long:"log-level" env:"BRIDGE_LOG_LEVEL" default:"info" description:"debug, info, warn, error"`
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

	chainCfg, err := config.LoadChainConfig(chain)
	if err != nil {
		log.Fatal("loading chain config", "error", err)
	}
	timing, err := config.LoadTimingConfig()
	if err != nil {
		log.Fatal("loading timing config", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := htlc.Dial(ctx, chainCfg.RPCEndpoint, common.HexToAddress(chainCfg.SwapAddress), common.HexToAddress(chainCfg.RegistryAddress))
	if err != nil {
		log.Fatal("dialing chain", "error", err)
	}
	defer client.Close()

	store, err := order.OpenSQLiteStore(opts.DataDir)
	if err != nil {
		log.Fatal("opening order store", "error", err)
	}
	defer store.Close()

	watcher := evmwatch.NewWatcher(chain, client, store, opts.StartBlock, chainCfg.MaxBlockSpan, timing.WatcherRetryDelay, timing.WatcherMaxRetries, log.Logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
	}()

	scheduler.Run(ctx, chainCfg.PollInterval, watcher.Poll, func(err error) {
		var fatal *evmwatch.FatalHaltError
		if errors.As(err, &fatal) {
			log.Error("fatal watcher error, stopping", "error", err)
			cancel()
			return
		}
		log.Warn("watcher poll failed", "error", err)
	})

	log.Info("evmwatcher stopped", "chain", chain)
}
