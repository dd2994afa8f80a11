// Package chainmodel defines the closed set of chains and assets the bridge
// understands, and the big-integer Amount type used throughout the system.
// All chain/asset parameters are centralized here - no hardcoded chain
// values should exist elsewhere in the codebase.
package chainmodel

import "fmt"

// Kind is the chain family: bitcoin or evm.
type Kind string

const (
	KindBitcoin Kind = "bitcoin"
	KindEVM     Kind = "evm"
)

// ChainId is an opaque tag from the closed set of supported chains.
type ChainId string

const (
	BitcoinTestnet     ChainId = "bitcoin_testnet"
	ArbitrumSepolia    ChainId = "arbitrum_sepolia"
	AvalancheTestnet   ChainId = "avalanche_testnet"
	EthereumSepolia    ChainId = "ethereum_sepolia"
	BaseSepolia        ChainId = "base_sepolia"
	OptimismSepolia    ChainId = "optimism_sepolia"
)

// ChainParams carries the static parameters of one ChainId.
type ChainParams struct {
	ID ChainId
	Kind Kind

	// EVM-only
	EVMChainID uint64

	// Bitcoin-only
	Confirmations uint64
}

var registry = map[ChainId]*ChainParams{
	BitcoinTestnet: {
		ID:            BitcoinTestnet,
		Kind:          KindBitcoin,
		Confirmations: 2,
	},
	ArbitrumSepolia: {
		ID:            ArbitrumSepolia,
		Kind:          KindEVM,
		EVMChainID:    421614,
		Confirmations: 3,
	},
	AvalancheTestnet: {
		ID:            AvalancheTestnet,
		Kind:          KindEVM,
		EVMChainID:    43113,
		Confirmations: 3,
	},
	EthereumSepolia: {
		ID:            EthereumSepolia,
		Kind:          KindEVM,
		EVMChainID:    11155111,
		Confirmations: 6,
	},
	BaseSepolia: {
		ID:            BaseSepolia,
		Kind:          KindEVM,
		EVMChainID:    84532,
		Confirmations: 3,
	},
	OptimismSepolia: {
		ID:            OptimismSepolia,
		Kind:          KindEVM,
		EVMChainID:    11155420,
		Confirmations: 3,
	},
}

// Register adds or overrides a chain's params. Used by config loading to
// inject RPC-derived chain IDs for custom deployments without hardcoding
// them here.
func Register(p *ChainParams) {
	registry[p.ID] = p
}

// Get looks up the static params for a ChainId.
func Get(id ChainId) (*ChainParams, bool) {
	p, ok := registry[id]
	return p, ok
}

// IsSupported reports whether id is a known chain.
func IsSupported(id ChainId) bool {
	_, ok := registry[id]
	return ok
}

// MustGet panics if id is unknown. Only used at startup for static chains.
func MustGet(id ChainId) *ChainParams {
	p, ok := Get(id)
	if !ok {
		panic(fmt.Sprintf("chainmodel: unknown chain %q", id))
	}
	return p
}

// All returns every registered chain.
func All() []*ChainParams {
	out := make([]*ChainParams, 0, len(registry))
	for _, p := range registry {
		out = append(out, p)
	}
	return out
}
