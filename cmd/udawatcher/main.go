// Command udawatcher runs the UDA watcher process: it watches the
// deterministic deposit address of every EVM-source order for the
// user's on-chain deposit and deploys the HTLC via the registry
// contract once funds arrive (spec §4.4). One process per configured
// EVM chain.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/ethereum/go-ethereum/common"

	"github.com/klingonswap/bridge/internal/chainmodel"
	"github.com/klingonswap/bridge/internal/config"
	"github.com/klingonswap/bridge/internal/htlc"
	"github.com/klingonswap/bridge/internal/order"
	"github.com/klingonswap/bridge/internal/scheduler"
	"github.com/klingonswap/bridge/internal/uda"
	"github.com/klingonswap/bridge/pkg/logging"
)

type options struct {
	Chain       string        `long:"chain" env:"WATCHER_CHAIN" required:"true" description:"EVM chain id to watch deposit addresses on"`
	DataDir     string        `long:"data-dir" env:"WATCHER_DATA_DIR" default:"./data/orderbook" description:"sqlite data directory (shared with the orderbook)"`
	AssetsFile  string        `long:"assets-file" env:"BRIDGE_ASSETS_FILE" default:"configs/assets.yaml" description:"asset registry seed file"`
	LogLevel    string        `long:"log-level" env:"BRIDGE_LOG_LEVEL" default:"info" description:"debug, info, warn, error"`
	BackoffBase time.Duration `long:"backoff-base" env:"UDA_BACKOFF_BASE" default:"10s" description:"initial retry backoff after a failed deploy attempt"`
	BackoffMax  time.Duration `long:"backoff-max" env:"UDA_BACKOFF_MAX" default:"5m" description:"maximum retry backoff"`
	MaxAttempts int           `long:"max-attempts" env:"UDA_MAX_ATTEMPTS" default:"10" description:"deploy attempts before giving up on a swap"`
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
	signer, err := config.LoadOperatorSigner()
	if err != nil {
		log.Fatal("loading operator signer", "error", err)
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

	watcher := uda.NewWatcher(chain, client, store, signer, opts.BackoffBase, opts.BackoffMax, opts.MaxAttempts, log.Logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
	}()

	scheduler.Run(ctx, chainCfg.PollInterval, watcher.Poll, func(err error) {
		log.Warn("uda poll failed", "error", err)
	})

	log.Info("udawatcher stopped", "chain", chain)
}
