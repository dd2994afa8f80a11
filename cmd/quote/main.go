// Command quote runs the Quote HTTP service: supported-asset listing
// and price-ratio quoting backed by a CoinMarketCap-refreshed cache
// (spec §4.6).
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/klingonswap/bridge/internal/config"
	"github.com/klingonswap/bridge/internal/quote"
	"github.com/klingonswap/bridge/pkg/logging"
)

type options struct {
	Addr       string `long:"addr" env:"QUOTE_ADDR" default:":8081" description:"listen address"`
	AssetsFile string `long:"assets-file" env:"BRIDGE_ASSETS_FILE" default:"configs/assets.yaml" description:"asset registry seed file"`
	CMCAPIKey  string `long:"cmc-api-key" env:"CMC_API_KEY" required:"true" description:"CoinMarketCap API key"`
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

	timing, err := config.LoadTimingConfig()
	if err != nil {
		log.Fatal("loading timing config", "error", err)
	}

	cmc := quote.NewCMCClient(opts.CMCAPIKey)
	cache := quote.NewCache(cmc, timing.QuotePriceCacheTTL)
	service := quote.NewService(cache)
	handler := quote.NewHandler(service, log.Logger)

	mux := http.NewServeMux()
	handler.Register(mux)

	srv := &http.Server{Addr: opts.Addr, Handler: mux}

	go func() {
		log.Info("quote listening", "addr", opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("quote server failed", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
		os.Exit(1)
	}
}
