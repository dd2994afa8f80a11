package httpapi

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/klingonswap/bridge/internal/chainmodel"
	"github.com/klingonswap/bridge/internal/config"
	"github.com/klingonswap/bridge/internal/order"
	"github.com/klingonswap/bridge/internal/secretkey"
)

type fakeEVMClient struct {
	swapAddress common.Address
}

func (f *fakeEVMClient) SwapAddress() common.Address { return f.swapAddress }

func (f *fakeEVMClient) ComputeOrderID(ctx context.Context, token, initiator, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte) ([32]byte, error) {
	var out [32]byte
	copy(out[:], append(initiator.Bytes(), redeemer.Bytes()...))
	return out, nil
}

func (f *fakeEVMClient) GetERC20Address(ctx context.Context, token, refundAddress, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte) (common.Address, error) {
	return common.HexToAddress("0x9999999999999999999999999999999999999999"), nil
}

func (f *fakeEVMClient) InitiateWithSignature(ctx context.Context, signer *ecdsa.PrivateKey, token, initiator, redeemer common.Address, timelock, amount *big.Int, secretHash [32]byte, signature []byte) (*types.Transaction, error) {
	return types.NewTransaction(0, common.Address{}, big.NewInt(0), 0, big.NewInt(0), nil), nil
}

func (f *fakeEVMClient) Redeem(ctx context.Context, signer *ecdsa.PrivateKey, orderID, secret [32]byte) (*types.Transaction, error) {
	return types.NewTransaction(0, common.Address{}, big.NewInt(0), 0, big.NewInt(0), nil), nil
}

func sampleBitcoinKeyHex(t *testing.T) string {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return hex.EncodeToString(priv.PubKey().SerializeCompressed())
}

func TestBuilderDerivesEVMEVMOrder(t *testing.T) {
	_, hash, err := secretkey.GenerateSecret()
	require.NoError(t, err)

	operator := config.OperatorIdentity{EVMAddress: "0x2222222222222222222222222222222222222222"}
	evm := map[chainmodel.ChainId]EVMChainClient{
		chainmodel.AvalancheTestnet: &fakeEVMClient{swapAddress: common.HexToAddress("0xaaaa")},
		chainmodel.ArbitrumSepolia:  &fakeEVMClient{swapAddress: common.HexToAddress("0xbbbb")},
	}
	builder := NewBuilder(operator, evm, nil, DefaultTimelockConfig())

	req := order.CreateOrder{
		From:                        chainmodel.NewAssetKey(chainmodel.AvalancheTestnet, "usdt"),
		To:                          chainmodel.NewAssetKey(chainmodel.ArbitrumSepolia, "usdt"),
		SourceAmount:                chainmodel.NewAmount(1_000_000),
		DestinationAmount:           chainmodel.NewAmount(1_000_000),
		Nonce:                       1,
		InitiatorSourceAddress:      "0x1111111111111111111111111111111111111111",
		InitiatorDestinationAddress: "0x3333333333333333333333333333333333333333",
		SecretHash:                  hash,
	}

	o, err := builder.Build(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, "0x1111111111111111111111111111111111111111", o.SourceSwap.Initiator)
	require.Equal(t, operator.EVMAddress, o.SourceSwap.Redeemer)
	require.Equal(t, operator.EVMAddress, o.DestinationSwap.Initiator)
	require.Equal(t, "0x3333333333333333333333333333333333333333", o.DestinationSwap.Redeemer)
	require.NotEmpty(t, o.SourceSwap.SwapID)
	require.NotEmpty(t, o.SourceSwap.DepositAddress)
	require.Equal(t, uint64(288), o.SourceSwap.Timelock)
	require.Equal(t, uint64(144), o.DestinationSwap.Timelock)
}

func TestBuilderRejectsUnsupportedAsset(t *testing.T) {
	_, hash, err := secretkey.GenerateSecret()
	require.NoError(t, err)

	builder := NewBuilder(config.OperatorIdentity{}, nil, nil, DefaultTimelockConfig())
	req := order.CreateOrder{
		From:                        chainmodel.AssetKey("nowhere:ghost"),
		To:                          chainmodel.NewAssetKey(chainmodel.ArbitrumSepolia, "usdt"),
		SourceAmount:                chainmodel.NewAmount(1),
		DestinationAmount:           chainmodel.NewAmount(1),
		InitiatorSourceAddress:      "0x1111111111111111111111111111111111111111",
		InitiatorDestinationAddress: "0x3333333333333333333333333333333333333333",
		SecretHash:                  hash,
	}

	_, err = builder.Build(context.Background(), req)
	require.Error(t, err)
}

func TestBuilderRejectsZeroAmount(t *testing.T) {
	_, hash, err := secretkey.GenerateSecret()
	require.NoError(t, err)

	builder := NewBuilder(config.OperatorIdentity{}, nil, nil, DefaultTimelockConfig())
	req := order.CreateOrder{
		From:                        chainmodel.NewAssetKey(chainmodel.AvalancheTestnet, "usdt"),
		To:                          chainmodel.NewAssetKey(chainmodel.ArbitrumSepolia, "usdt"),
		SourceAmount:                chainmodel.NewAmount(0),
		DestinationAmount:           chainmodel.NewAmount(1),
		InitiatorSourceAddress:      "0x1111111111111111111111111111111111111111",
		InitiatorDestinationAddress: "0x3333333333333333333333333333333333333333",
		SecretHash:                  hash,
	}

	_, err = builder.Build(context.Background(), req)
	require.Error(t, err)
}

func TestBuilderDerivesBitcoinSourceOrder(t *testing.T) {
	_, hash, err := secretkey.GenerateSecret()
	require.NoError(t, err)

	userKey := sampleBitcoinKeyHex(t)
	operatorKey := sampleBitcoinKeyHex(t)

	operator := config.OperatorIdentity{EVMAddress: "0x2222222222222222222222222222222222222222", BitcoinPubKeyHex: operatorKey}
	evm := map[chainmodel.ChainId]EVMChainClient{
		chainmodel.ArbitrumSepolia: &fakeEVMClient{swapAddress: common.HexToAddress("0xbbbb")},
	}
	bitcoin := map[chainmodel.ChainId]BitcoinNetwork{
		chainmodel.BitcoinTestnet: {Params: &chaincfg.TestNet3Params},
	}
	builder := NewBuilder(operator, evm, bitcoin, DefaultTimelockConfig())

	req := order.CreateOrder{
		From:                        chainmodel.NewAssetKey(chainmodel.BitcoinTestnet, "btc"),
		To:                          chainmodel.NewAssetKey(chainmodel.ArbitrumSepolia, "usdt"),
		SourceAmount:                chainmodel.NewAmount(10000),
		DestinationAmount:           chainmodel.NewAmount(1_000_000),
		Nonce:                       1,
		InitiatorSourceAddress:      userKey,
		InitiatorDestinationAddress: "0x3333333333333333333333333333333333333333",
		SecretHash:                  hash,
	}

	o, err := builder.Build(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, userKey, o.SourceSwap.Initiator)
	require.Equal(t, operatorKey, o.SourceSwap.Redeemer)
	require.NotEmpty(t, o.SourceSwap.DepositAddress)
	require.Len(t, o.SourceSwap.SwapID, 64)
}

func TestBuilderRejectsMalformedBitcoinPubKey(t *testing.T) {
	_, hash, err := secretkey.GenerateSecret()
	require.NoError(t, err)

	operator := config.OperatorIdentity{BitcoinPubKeyHex: "not-hex"}
	bitcoin := map[chainmodel.ChainId]BitcoinNetwork{
		chainmodel.BitcoinTestnet: {Params: &chaincfg.TestNet3Params},
	}
	builder := NewBuilder(operator, nil, bitcoin, DefaultTimelockConfig())

	req := order.CreateOrder{
		From:                        chainmodel.NewAssetKey(chainmodel.BitcoinTestnet, "btc"),
		To:                          chainmodel.NewAssetKey(chainmodel.ArbitrumSepolia, "usdt"),
		SourceAmount:                chainmodel.NewAmount(10000),
		DestinationAmount:           chainmodel.NewAmount(1_000_000),
		InitiatorSourceAddress:      "zz",
		InitiatorDestinationAddress: "0x3333333333333333333333333333333333333333",
		SecretHash:                  hash,
	}

	_, err = builder.Build(context.Background(), req)
	require.Error(t, err)
}
