// Command orderbook runs the Orderbook HTTP service: order creation,
// lookup, status streaming, and relay of user-signed initiate/redeem
// calls (spec §4.1, §6).
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	flags "github.com/jessevdk/go-flags"

	"github.com/klingonswap/bridge/internal/chainmodel"
	"github.com/klingonswap/bridge/internal/config"
	"github.com/klingonswap/bridge/internal/htlc"
	"github.com/klingonswap/bridge/internal/httpapi"
	"github.com/klingonswap/bridge/internal/order"
	"github.com/klingonswap/bridge/internal/scheduler"
	"github.com/klingonswap/bridge/pkg/logging"
)

// retentionSweepInterval is how often terminal orders older than
// config.TimingConfig.OrderExpiry are archived out of the store.
const retentionSweepInterval = time.Hour

type options struct {
	Addr       string `long:"addr" env:"ORDERBOOK_ADDR" default:":8080" description:"listen address"`
	DataDir    string `long:"data-dir" env:"ORDERBOOK_DATA_DIR" default:"./data/orderbook" description:"sqlite data directory"`
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

	operator, err := config.LoadOperatorIdentity()
	if err != nil {
		log.Fatal("loading operator identity", "error", err)
	}
	signer, err := config.LoadOperatorSigner()
	if err != nil {
		log.Fatal("loading operator signer", "error", err)
	}

	activeChains, err := config.LoadActiveChains()
	if err != nil {
		log.Fatal("loading active chains", "error", err)
	}
	timing, err := config.LoadTimingConfig()
	if err != nil {
		log.Fatal("loading timing config", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evmClients := make(map[chainmodel.ChainId]httpapi.EVMChainClient)
	bitcoinNetworks := make(map[chainmodel.ChainId]httpapi.BitcoinNetwork)

	for _, chain := range activeChains {
		params := chainmodel.MustGet(chain)

		if params.Kind == chainmodel.KindBitcoin {
			// Deriving a Bitcoin deposit address needs only the chain's
			// params, no RPC endpoint - see httpapi.Builder.buildBitcoinSwap.
			btcParams, err := bitcoinChainParams(chain)
			if err != nil {
				log.Fatal("resolving bitcoin params", "chain", chain, "error", err)
			}
			bitcoinNetworks[chain] = httpapi.BitcoinNetwork{Params: btcParams}
			continue
		}

		chainCfg, err := config.LoadChainConfig(chain)
		if err != nil {
			log.Fatal("loading chain config", "chain", chain, "error", err)
		}
		client, err := htlc.Dial(ctx, chainCfg.RPCEndpoint, common.HexToAddress(chainCfg.SwapAddress), common.HexToAddress(chainCfg.RegistryAddress))
		if err != nil {
			log.Fatal("dialing EVM chain", "chain", chain, "error", err)
		}
		defer client.Close()
		evmClients[chain] = client
	}

	store, err := order.OpenSQLiteStore(opts.DataDir)
	if err != nil {
		log.Fatal("opening order store", "error", err)
	}
	defer store.Close()

	builder := httpapi.NewBuilder(operator, evmClients, bitcoinNetworks, httpapi.DefaultTimelockConfig())
	handler := httpapi.NewHandler(store, builder, evmClients, signer, log.Logger)

	mux := http.NewServeMux()
	handler.Register(mux)

	srv := &http.Server{Addr: opts.Addr, Handler: mux}

	go scheduler.Run(ctx, retentionSweepInterval, func(ctx context.Context) error {
		n, err := store.ArchiveTerminalOrders(ctx, time.Now().Add(-timing.OrderExpiry))
		if err != nil {
			return fmt.Errorf("archiving terminal orders: %w", err)
		}
		if n > 0 {
			log.Info("archived terminal orders", "count", n)
		}
		return nil
	}, func(err error) {
		log.Warn("retention sweep failed", "error", err)
	})

	go func() {
		log.Info("orderbook listening", "addr", opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("orderbook server failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
		os.Exit(1)
	}
}

// bitcoinChainParams maps a Bitcoin ChainId onto its chaincfg.Params.
// bitcoin_testnet is the only Bitcoin chain this system currently
// supports; a new one needs an entry here.
func bitcoinChainParams(chain chainmodel.ChainId) (*chaincfg.Params, error) {
	switch chain {
	case chainmodel.BitcoinTestnet:
		return &chaincfg.TestNet3Params, nil
	default:
		return nil, fmt.Errorf("no chaincfg.Params mapping for chain %q", chain)
	}
}
