package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/klingonswap/bridge/internal/chainmodel"
)

// chainEnvPrefix namespaces the per-chain environment variables, e.g.
// BRIDGE_CHAIN_AVALANCHE_TESTNET_RPC_ENDPOINT.
const chainEnvPrefix = "BRIDGE_CHAIN_"

// LoadChainConfig builds the runtime configuration for one chain from
// environment variables. RPC endpoint is required; confirmations and
// poll interval fall back to the chain's static params and a sane
// default respectively.
func LoadChainConfig(chain chainmodel.ChainId) (ChainConfig, error) {
	params, ok := chainmodel.Get(chain)
	if !ok {
		return ChainConfig{}, fmt.Errorf("config: unknown chain %s", chain)
	}

	envKey := chainEnvKey(chain)

	rpc, err := RequireEnv(chainEnvPrefix + envKey + "_RPC_ENDPOINT")
	if err != nil {
		return ChainConfig{}, err
	}

	cfg := ChainConfig{
		Chain:         chain,
		RPCEndpoint:   rpc,
		Confirmations: uint32(params.Confirmations),
		PollInterval:  10 * time.Second,
	}

	if params.Kind == chainmodel.KindEVM {
		swapAddr, err := RequireEnv(chainEnvPrefix + envKey + "_SWAP_ADDRESS")
		if err != nil {
			return ChainConfig{}, err
		}
		cfg.SwapAddress = swapAddr
		cfg.RegistryAddress = EnvOr(chainEnvPrefix+envKey+"_REGISTRY_ADDRESS", "")
		cfg.MaxBlockSpan = 2000
	}

	if raw := EnvOr(chainEnvPrefix+envKey+"_POLL_INTERVAL", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return ChainConfig{}, fmt.Errorf("config: invalid %s%s_POLL_INTERVAL: %w", chainEnvPrefix, envKey, err)
		}
		cfg.PollInterval = d
	}

	return cfg, nil
}

// LoadActiveChains reads the comma-separated set of chains this
// deployment runs watchers/clients for from BRIDGE_ACTIVE_CHAINS, e.g.
// "avalanche_testnet,bitcoin_testnet". A service that runs against every
// chain it's ever asked to serve (the Orderbook and executor) uses this
// instead of hardcoding the closed set from chainmodel.All(), since a
// given deployment rarely runs every chain chainmodel knows about.
func LoadActiveChains() ([]chainmodel.ChainId, error) {
	raw, err := RequireEnv("BRIDGE_ACTIVE_CHAINS")
	if err != nil {
		return nil, err
	}
	var out []chainmodel.ChainId
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		chain := chainmodel.ChainId(s)
		if !chainmodel.IsSupported(chain) {
			return nil, fmt.Errorf("config: BRIDGE_ACTIVE_CHAINS references unknown chain %q", s)
		}
		out = append(out, chain)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("config: BRIDGE_ACTIVE_CHAINS is empty")
	}
	return out, nil
}

func chainEnvKey(chain chainmodel.ChainId) string {
	out := make([]byte, 0, len(chain))
	for _, r := range string(chain) {
		if r == '-' {
			r = '_'
		}
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		out = append(out, byte(r))
	}
	return string(out)
}
