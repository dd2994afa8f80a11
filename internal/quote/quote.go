// Package quote implements the stateless pricing service of spec §4.6:
// listing supported chains/assets and computing cross-asset quote amounts
// from cached USD spot prices.
package quote

import (
	"context"
	"math/big"

	"github.com/klingonswap/bridge/internal/bridgeerr"
	"github.com/klingonswap/bridge/internal/chainmodel"
)

// Leg is one side of a computed quote.
type Leg struct {
	Asset   chainmodel.AssetKey `json:"asset"`
	Amount  chainmodel.Amount   `json:"amount"`
	Display string              `json:"display"`
	Value   float64             `json:"value"`
}

// Result is the full response of a /quote call: the two legs it would
// take to move amount from the source asset into the destination asset.
type Result struct {
	Source      Leg `json:"source"`
	Destination Leg `json:"destination"`
}

// ChainAssets is one entry of the /supported-assets response.
type ChainAssets struct {
	ID     chainmodel.ChainId         `json:"id"`
	Name   string                     `json:"name"`
	Assets []chainmodel.AssetDescriptor `json:"assets"`
}

// Service computes quotes against a price cache. It holds no per-request
// state, matching the "Stateless" responsibility spec §4.6 assigns it.
type Service struct {
	cache *Cache
}

func NewService(cache *Cache) *Service {
	return &Service{cache: cache}
}

// SupportedAssets lists every configured chain with its known assets, for
// GET /supported-assets.
func (s *Service) SupportedAssets() []ChainAssets {
	chains := chainmodel.All()
	out := make([]ChainAssets, 0, len(chains))
	for _, chain := range chains {
		descriptors := chainmodel.AssetsByChain(chain.ID)
		assets := make([]chainmodel.AssetDescriptor, 0, len(descriptors))
		for _, d := range descriptors {
			assets = append(assets, *d)
		}
		out = append(out, ChainAssets{
			ID:     chain.ID,
			Name:   chainName(chain.ID),
			Assets: assets,
		})
	}
	return out
}

// Quote computes the destination-leg amount for moving amount base units
// of the from asset into the to asset, per spec §4.6's pricing contract:
// rate = price(from)/price(to), scaled by each asset's decimals. Only the
// USD-value computation uses floating point; amounts themselves are
// tracked as big integers throughout.
func (s *Service) Quote(ctx context.Context, from, to chainmodel.AssetKey, amount chainmodel.Amount) (Result, error) {
	srcAsset, ok := chainmodel.GetAsset(from)
	if !ok {
		return Result{}, bridgeerr.UnsupportedAsset("unknown asset %q", from)
	}
	dstAsset, ok := chainmodel.GetAsset(to)
	if !ok {
		return Result{}, bridgeerr.UnsupportedAsset("unknown asset %q", to)
	}

	prices, err := s.cache.Prices(ctx, []int{srcAsset.CMCId, dstAsset.CMCId})
	if err != nil {
		return Result{}, bridgeerr.RpcTransient(err)
	}
	srcPrice, ok := prices[srcAsset.CMCId]
	if !ok {
		return Result{}, bridgeerr.Wrap(bridgeerr.KindRpcTransient, "no cached price for source asset", nil)
	}
	dstPrice, ok := prices[dstAsset.CMCId]
	if !ok {
		return Result{}, bridgeerr.Wrap(bridgeerr.KindRpcTransient, "no cached price for destination asset", nil)
	}

	srcDisplayFloat := displayFloat(amount, srcAsset.Decimals)
	srcValueUSD, _ := new(big.Float).Mul(srcDisplayFloat, big.NewFloat(srcPrice)).Float64()

	var dstAmount chainmodel.Amount
	var dstDisplayFloat *big.Float
	if dstPrice == 0 {
		dstDisplayFloat = big.NewFloat(0)
	} else {
		dstDisplayFloat = new(big.Float).Quo(big.NewFloat(srcValueUSD), big.NewFloat(dstPrice))
	}
	dstAmount = amountFromDisplay(dstDisplayFloat, dstAsset.Decimals)
	dstValueUSD, _ := dstDisplayFloat.Float64()
	dstValueUSD *= dstPrice

	return Result{
		Source: Leg{
			Asset:   from,
			Amount:  amount,
			Display: srcDisplayFloat.Text('f', int(srcAsset.Decimals)),
			Value:   srcValueUSD,
		},
		Destination: Leg{
			Asset:   to,
			Amount:  dstAmount,
			Display: dstDisplayFloat.Text('f', int(dstAsset.Decimals)),
			Value:   dstValueUSD,
		},
	}, nil
}

// displayFloat converts a base-unit Amount into its human-display value,
// dividing by 10^decimals.
func displayFloat(amount chainmodel.Amount, decimals uint8) *big.Float {
	scale := new(big.Float).SetInt(pow10(decimals))
	return new(big.Float).Quo(new(big.Float).SetInt(amount.Big()), scale)
}

// amountFromDisplay converts a human-display value back into a base-unit
// Amount, truncating any fractional remainder below the smallest unit.
func amountFromDisplay(display *big.Float, decimals uint8) chainmodel.Amount {
	scaled := new(big.Float).Mul(display, new(big.Float).SetInt(pow10(decimals)))
	i, _ := scaled.Int(nil)
	if i.Sign() < 0 {
		i.SetInt64(0)
	}
	return chainmodel.MustParseAmount(i.String())
}

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func chainName(id chainmodel.ChainId) string {
	switch id {
	case chainmodel.BitcoinTestnet:
		return "Bitcoin Testnet"
	case chainmodel.ArbitrumSepolia:
		return "Arbitrum Sepolia"
	case chainmodel.AvalancheTestnet:
		return "Avalanche Fuji"
	case chainmodel.EthereumSepolia:
		return "Ethereum Sepolia"
	case chainmodel.BaseSepolia:
		return "Base Sepolia"
	case chainmodel.OptimismSepolia:
		return "Optimism Sepolia"
	default:
		return string(id)
	}
}
