// Package config centralizes all environment-driven and file-driven
// settings for the bridge: which chains and assets are active, where
// their RPC endpoints live, and the timing parameters each component
// polls on. No component should read an environment variable directly;
// everything funnels through here.
package config

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/klingonswap/bridge/internal/chainmodel"
)

// ChainConfig is the per-chain runtime configuration: where to reach
// it and how many confirmations its watcher should wait for.
type ChainConfig struct {
	Chain           chainmodel.ChainId `yaml:"chain"`
	RPCEndpoint     string             `yaml:"rpc_endpoint"`
	SwapAddress     string             `yaml:"swap_address,omitempty"`
	RegistryAddress string             `yaml:"registry_address,omitempty"`
	Confirmations   uint32             `yaml:"confirmations"`
	PollInterval    time.Duration      `yaml:"poll_interval"`
	MaxBlockSpan    uint64             `yaml:"max_block_span,omitempty"`
}

// AssetFileConfig mirrors one entry of configs/assets.yaml.
type AssetFileConfig struct {
	Chain           chainmodel.ChainId `yaml:"chain"`
	Symbol          string             `yaml:"symbol"`
	TokenAddress    string             `yaml:"token_address,omitempty"`
	Decimals        uint8              `yaml:"decimals"`
	CMCID           int                `yaml:"cmc_id,omitempty"`
	MinAmountAtomic string             `yaml:"min_amount_atomic"`
}

// AssetFile is the top-level shape of configs/assets.yaml.
type AssetFile struct {
	Assets []AssetFileConfig `yaml:"assets"`
}

// TimingConfig holds the cross-component scheduling knobs from the
// design notes' defaults table.
type TimingConfig struct {
	OrderExpiry          time.Duration
	NonceReplayWindow    time.Duration
	ExecutorPollInterval time.Duration
	QuotePriceCacheTTL   time.Duration
	WatcherRetryDelay    time.Duration
	WatcherMaxRetries    int
}

// DefaultTimingConfig returns the design notes' defaults; every value
// is overridable by environment variable in LoadTimingConfig.
func DefaultTimingConfig() TimingConfig {
	return TimingConfig{
		OrderExpiry:          24 * time.Hour,
		NonceReplayWindow:    10 * time.Minute,
		ExecutorPollInterval: 15 * time.Second,
		QuotePriceCacheTTL:   5 * time.Minute,
		WatcherRetryDelay:    5 * time.Second,
		WatcherMaxRetries:    5,
	}
}

// LoadTimingConfig starts from DefaultTimingConfig and overrides any
// field whose env var is set.
func LoadTimingConfig() (TimingConfig, error) {
	cfg := DefaultTimingConfig()

	overrides := []struct {
		env string
		dst *time.Duration
	}{
		{"BRIDGE_ORDER_EXPIRY", &cfg.OrderExpiry},
		{"BRIDGE_NONCE_REPLAY_WINDOW", &cfg.NonceReplayWindow},
		{"BRIDGE_EXECUTOR_POLL_INTERVAL", &cfg.ExecutorPollInterval},
		{"BRIDGE_QUOTE_PRICE_CACHE_TTL", &cfg.QuotePriceCacheTTL},
		{"BRIDGE_WATCHER_RETRY_DELAY", &cfg.WatcherRetryDelay},
	}
	for _, o := range overrides {
		raw, ok := os.LookupEnv(o.env)
		if !ok || raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return TimingConfig{}, fmt.Errorf("config: invalid %s: %w", o.env, err)
		}
		*o.dst = d
	}

	if raw, ok := os.LookupEnv("BRIDGE_WATCHER_MAX_RETRIES"); ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return TimingConfig{}, fmt.Errorf("config: invalid BRIDGE_WATCHER_MAX_RETRIES: %w", err)
		}
		cfg.WatcherMaxRetries = n
	}

	return cfg, nil
}

// OperatorIdentity is the bridge's own on-chain identity: the address
// that funds destination HTLCs and redeems source HTLCs on the EVM
// side, and the Bitcoin pubkey used wherever a swap leg touches a
// Bitcoin chain. Both are required at startup regardless of which
// chains are actually configured, since either may appear on either
// leg of an order.
type OperatorIdentity struct {
	EVMAddress       string
	BitcoinPubKeyHex string
}

// LoadOperatorIdentity reads the operator's public identity from the
// environment, the same RequireEnv pattern used for operator keys
// elsewhere.
func LoadOperatorIdentity() (OperatorIdentity, error) {
	evmAddr, err := RequireEnv("OPERATOR_EVM_ADDRESS")
	if err != nil {
		return OperatorIdentity{}, err
	}
	btcPubKey, err := RequireEnv("OPERATOR_BITCOIN_PUBKEY")
	if err != nil {
		return OperatorIdentity{}, err
	}
	return OperatorIdentity{EVMAddress: evmAddr, BitcoinPubKeyHex: btcPubKey}, nil
}

// LoadOperatorSigner reads the operator's EVM signing key - the private
// counterpart of OperatorIdentity.EVMAddress - used by the executor and
// the Orderbook's relay endpoints to sign on-chain transactions.
func LoadOperatorSigner() (*ecdsa.PrivateKey, error) {
	raw, err := RequireEnv("OPERATOR_EVM_PRIVATE_KEY")
	if err != nil {
		return nil, err
	}
	key, err := crypto.HexToECDSA(trimHex(raw))
	if err != nil {
		return nil, fmt.Errorf("config: invalid OPERATOR_EVM_PRIVATE_KEY: %w", err)
	}
	return key, nil
}

func trimHex(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// RequireEnv reads an environment variable and errors if it is unset
// or empty, the pattern used for secrets that have no safe default
// (RPC endpoints, operator keys).
func RequireEnv(name string) (string, error) {
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("config: required environment variable %s is not set", name)
	}
	return v, nil
}

// EnvOr reads an environment variable, falling back to def when unset
// or empty.
func EnvOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
