package chainmodel

import (
	"fmt"
	"strings"
)

// AssetKey is the "chain:asset" wire identifier, e.g. "avalanche_testnet:avax".
type AssetKey string

// NewAssetKey builds an AssetKey from its parts.
func NewAssetKey(chain ChainId, symbol string) AssetKey {
	return AssetKey(string(chain) + ":" + strings.ToLower(symbol))
}

// Split decomposes an AssetKey into its chain and symbol parts.
func (a AssetKey) Split() (ChainId, string, error) {
	parts := strings.SplitN(string(a), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("chainmodel: malformed asset key %q", a)
	}
	return ChainId(parts[0]), parts[1], nil
}

// Chain returns the chain component of the asset key.
func (a AssetKey) Chain() ChainId {
	c, _, _ := a.Split()
	return c
}

// AssetDescriptor describes a tradable asset: its symbol, display name,
// decimal scale, and the CoinMarketCap numeric ID used for spot pricing.
type AssetDescriptor struct {
	Key      AssetKey `yaml:"key"`
	Symbol   string   `yaml:"symbol"`
	Name     string   `yaml:"name"`
	Decimals uint8    `yaml:"decimals"`
	CMCId    int      `yaml:"cmc_id"`
	// TokenAddress is the ERC-20 contract address for EVM assets; empty for
	// the chain's native asset and for Bitcoin.
	TokenAddress string `yaml:"token_address,omitempty"`
	// MinAmount is the smallest order amount accepted for this asset, in
	// its smallest atomic unit. Zero means no floor is enforced.
	MinAmount Amount `yaml:"-"`
}

// assetRegistry is populated by LoadAssets at startup (see config package);
// it starts with a built-in seed so unit tests don't need a config file.
var assetRegistry = map[AssetKey]*AssetDescriptor{
	NewAssetKey(BitcoinTestnet, "btc"): {
		Key: NewAssetKey(BitcoinTestnet, "btc"), Symbol: "BTC", Name: "Bitcoin", Decimals: 8, CMCId: 1,
	},
	NewAssetKey(AvalancheTestnet, "avax"): {
		Key: NewAssetKey(AvalancheTestnet, "avax"), Symbol: "AVAX", Name: "Avalanche", Decimals: 18, CMCId: 5805,
	},
	NewAssetKey(ArbitrumSepolia, "usdt"): {
		Key: NewAssetKey(ArbitrumSepolia, "usdt"), Symbol: "USDT", Name: "Tether USD", Decimals: 6, CMCId: 825,
	},
	NewAssetKey(AvalancheTestnet, "usdt"): {
		Key: NewAssetKey(AvalancheTestnet, "usdt"), Symbol: "USDT", Name: "Tether USD", Decimals: 6, CMCId: 825,
	},
}

// RegisterAsset adds or replaces an asset descriptor, used by config loading
// when seeding from configs/assets.yaml.
func RegisterAsset(d *AssetDescriptor) {
	assetRegistry[d.Key] = d
}

// GetAsset looks up an asset's descriptor.
func GetAsset(key AssetKey) (*AssetDescriptor, bool) {
	d, ok := assetRegistry[key]
	return d, ok
}

// IsAssetSupported reports whether an asset key resolves to a known
// descriptor on a known chain.
func IsAssetSupported(key AssetKey) bool {
	chain, _, err := key.Split()
	if err != nil {
		return false
	}
	if !IsSupported(chain) {
		return false
	}
	_, ok := assetRegistry[key]
	return ok
}

// AssetsByChain groups all known asset descriptors for one chain.
func AssetsByChain(chain ChainId) []*AssetDescriptor {
	var out []*AssetDescriptor
	for _, d := range assetRegistry {
		if d.Key.Chain() == chain {
			out = append(out, d)
		}
	}
	return out
}

// AllAssets returns every registered asset descriptor.
func AllAssets() []*AssetDescriptor {
	out := make([]*AssetDescriptor, 0, len(assetRegistry))
	for _, d := range assetRegistry {
		out = append(out, d)
	}
	return out
}
