package config

import (
	"testing"
	"time"

	"github.com/klingonswap/bridge/internal/chainmodel"
)

func TestDefaultTimingConfigHasPositiveValues(t *testing.T) {
	cfg := DefaultTimingConfig()
	if cfg.OrderExpiry <= 0 || cfg.NonceReplayWindow <= 0 || cfg.ExecutorPollInterval <= 0 {
		t.Error("default timing config should have positive durations")
	}
	if cfg.WatcherMaxRetries <= 0 {
		t.Error("default max retries should be positive")
	}
}

func TestLoadTimingConfigAppliesOverride(t *testing.T) {
	t.Setenv("BRIDGE_ORDER_EXPIRY", "1h")
	t.Setenv("BRIDGE_WATCHER_MAX_RETRIES", "9")

	cfg, err := LoadTimingConfig()
	if err != nil {
		t.Fatalf("LoadTimingConfig error = %v", err)
	}
	if cfg.OrderExpiry != time.Hour {
		t.Errorf("OrderExpiry = %v, want 1h", cfg.OrderExpiry)
	}
	if cfg.WatcherMaxRetries != 9 {
		t.Errorf("WatcherMaxRetries = %d, want 9", cfg.WatcherMaxRetries)
	}
}

func TestLoadTimingConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("BRIDGE_ORDER_EXPIRY", "not-a-duration")
	if _, err := LoadTimingConfig(); err == nil {
		t.Error("expected error for malformed duration")
	}
}

func TestRequireEnvMissing(t *testing.T) {
	if _, err := RequireEnv("BRIDGE_TEST_DOES_NOT_EXIST"); err == nil {
		t.Error("expected error for unset required env var")
	}
}

func TestEnvOrFallsBackToDefault(t *testing.T) {
	if got := EnvOr("BRIDGE_TEST_DOES_NOT_EXIST", "fallback"); got != "fallback" {
		t.Errorf("EnvOr = %q, want fallback", got)
	}
}

func TestLoadChainConfigRequiresRPCEndpoint(t *testing.T) {
	if _, err := LoadChainConfig(chainmodel.AvalancheTestnet); err == nil {
		t.Error("expected error when RPC endpoint env var is unset")
	}
}

func TestLoadChainConfigReadsRPCEndpoint(t *testing.T) {
	t.Setenv("BRIDGE_CHAIN_AVALANCHE_TESTNET_RPC_ENDPOINT", "https://api.avax-test.network/ext/bc/C/rpc")

	cfg, err := LoadChainConfig(chainmodel.AvalancheTestnet)
	if err != nil {
		t.Fatalf("LoadChainConfig error = %v", err)
	}
	if cfg.RPCEndpoint == "" {
		t.Error("expected RPC endpoint to be set")
	}
	if cfg.Confirmations == 0 {
		t.Error("expected confirmations to be populated from chain params")
	}
}

func TestLoadChainConfigRejectsUnknownChain(t *testing.T) {
	if _, err := LoadChainConfig(chainmodel.ChainId("nonexistent")); err == nil {
		t.Error("expected error for unknown chain")
	}
}
