package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/klingonswap/bridge/internal/chainmodel"
	"github.com/klingonswap/bridge/internal/secretkey"
)

func sampleCreateOrder() CreateOrder {
	_, hash, _ := secretkey.GenerateSecret()
	return CreateOrder{
		From:                        chainmodel.NewAssetKey(chainmodel.BitcoinTestnet, "btc"),
		To:                          chainmodel.NewAssetKey(chainmodel.AvalancheTestnet, "avax"),
		SourceAmount:                chainmodel.NewAmount(10000),
		DestinationAmount:           chainmodel.MustParseAmount("150000000000000000"),
		Nonce:                       1700000000000,
		InitiatorSourceAddress:      "tb1qexampleaddress",
		InitiatorDestinationAddress: "0x1234567890123456789012345678901234567890",
		SecretHash:                  hash,
		CreatedAt:                   time.Unix(1700000000, 0),
	}
}

func TestCreateIDIsDeterministic(t *testing.T) {
	c := sampleCreateOrder()
	id1, err := c.CreateID()
	require.NoError(t, err)
	id2, err := c.CreateID()
	require.NoError(t, err)
	require.Equal(t, id1, id2)
	require.Len(t, id1, 64)
}

func TestCreateIDChangesWithNonce(t *testing.T) {
	c1 := sampleCreateOrder()
	c2 := sampleCreateOrder()
	c2.Nonce = c1.Nonce + 1

	id1, err := c1.CreateID()
	require.NoError(t, err)
	id2, err := c2.CreateID()
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)
}

func TestSwapLifecyclePredicates(t *testing.T) {
	var s Swap
	require.False(t, s.IsInitiated())
	require.False(t, s.IsConfirmed())
	require.False(t, s.IsRedeemed())
	require.False(t, s.IsRefunded())

	s.InitiateTxHash = "0xabc"
	require.True(t, s.IsInitiated())
	require.False(t, s.IsConfirmed())

	block := uint64(42)
	s.InitiateBlockNumber = &block
	require.True(t, s.IsConfirmed())

	s.RedeemTxHash = "0xdef"
	require.True(t, s.IsRedeemed())
}

func TestOrderSwapAccessor(t *testing.T) {
	o := &Order{}
	o.SourceSwap.SwapID = "src"
	o.DestinationSwap.SwapID = "dst"

	require.Equal(t, "src", o.Swap(Source).SwapID)
	require.Equal(t, "dst", o.Swap(Destination).SwapID)
}

func TestOrderChainAccessors(t *testing.T) {
	o := &Order{CreateOrder: sampleCreateOrder()}
	require.Equal(t, chainmodel.BitcoinTestnet, o.SourceChain())
	require.Equal(t, chainmodel.AvalancheTestnet, o.DestinationChain())
}
