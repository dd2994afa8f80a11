package quote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/klingonswap/bridge/internal/chainmodel"
)

func TestQuoteComputesDestinationAmountFromPriceRatio(t *testing.T) {
	btc := chainmodel.NewAssetKey(chainmodel.BitcoinTestnet, "btc")
	avax := chainmodel.NewAssetKey(chainmodel.AvalancheTestnet, "avax")

	btcAsset, ok := chainmodel.GetAsset(btc)
	require.True(t, ok)
	avaxAsset, ok := chainmodel.GetAsset(avax)
	require.True(t, ok)

	fetcher := &fakeFetcher{prices: map[int]float64{
		btcAsset.CMCId:  65000,
		avaxAsset.CMCId: 26,
	}}
	cache := NewCache(fetcher, 5*time.Minute)
	svc := NewService(cache)

	// 0.0001 BTC = 10000 sat.
	result, err := svc.Quote(context.Background(), btc, avax, chainmodel.NewAmount(10000))
	require.NoError(t, err)

	require.Equal(t, btc, result.Source.Asset)
	require.Equal(t, avax, result.Destination.Asset)
	require.InDelta(t, 6.5, result.Source.Value, 0.001)

	// Expected AVAX base units ~= (6.5 / 26) * 10^18 = 0.25e18.
	expected := chainmodel.MustParseAmount("250000000000000000")
	require.Equal(t, 0, result.Destination.Amount.Cmp(expected))
}

func TestQuoteRejectsUnsupportedAsset(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[int]float64{}}
	cache := NewCache(fetcher, 5*time.Minute)
	svc := NewService(cache)

	_, err := svc.Quote(context.Background(), chainmodel.AssetKey("nowhere:ghost"), chainmodel.NewAssetKey(chainmodel.AvalancheTestnet, "avax"), chainmodel.NewAmount(1))
	require.Error(t, err)
}

func TestSupportedAssetsListsEveryChain(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[int]float64{}}
	cache := NewCache(fetcher, 5*time.Minute)
	svc := NewService(cache)

	assets := svc.SupportedAssets()
	require.Equal(t, len(chainmodel.All()), len(assets))

	found := false
	for _, c := range assets {
		if c.ID == chainmodel.BitcoinTestnet {
			found = true
			require.NotEmpty(t, c.Assets)
		}
	}
	require.True(t, found)
}
