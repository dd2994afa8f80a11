// Command executor runs the counterparty executor daemon: it provides
// the operator's half of every order it fulfils - destination
// initiate, source redeem on secret reveal, destination refund on
// timelock expiry - across every configured EVM chain (spec §4.5).
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
	"github.com/klingonswap/bridge/internal/executor"
	"github.com/klingonswap/bridge/internal/htlc"
	"github.com/klingonswap/bridge/internal/order"
	"github.com/klingonswap/bridge/internal/scheduler"
	"github.com/klingonswap/bridge/pkg/logging"
)

type options struct {
	DataDir    string `long:"data-dir" env:"EXECUTOR_DATA_DIR" default:"./data/orderbook" description:"sqlite data directory (shared with the orderbook)"`
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

	signer, err := config.LoadOperatorSigner()
	if err != nil {
		log.Fatal("loading operator signer", "error", err)
	}
	timing, err := config.LoadTimingConfig()
	if err != nil {
		log.Fatal("loading timing config", "error", err)
	}
	activeChains, err := config.LoadActiveChains()
	if err != nil {
		log.Fatal("loading active chains", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clients := make(map[chainmodel.ChainId]executor.ChainClient)
	for _, chain := range activeChains {
		params := chainmodel.MustGet(chain)
		if params.Kind != chainmodel.KindEVM {
			// The executor only drives EVM legs; a Bitcoin-side destination
			// or refund requires the operator's own wallet tooling (see
			// DESIGN.md's Open Question decision).
			continue
		}
		chainCfg, err := config.LoadChainConfig(chain)
		if err != nil {
			log.Fatal("loading chain config", "chain", chain, "error", err)
		}
		client, err := htlc.Dial(ctx, chainCfg.RPCEndpoint, common.HexToAddress(chainCfg.SwapAddress), common.HexToAddress(chainCfg.RegistryAddress))
		if err != nil {
			log.Fatal("dialing chain", "chain", chain, "error", err)
		}
		defer client.Close()
		clients[chain] = client
	}

	store, err := order.OpenSQLiteStore(opts.DataDir)
	if err != nil {
		log.Fatal("opening order store", "error", err)
	}
	defer store.Close()

	ex := executor.New(clients, signer, store, log.Logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
	}()

	scheduler.Run(ctx, timing.ExecutorPollInterval, ex.Poll, func(err error) {
		log.Warn("executor poll failed", "error", err)
	})

	log.Info("executor stopped")
}
