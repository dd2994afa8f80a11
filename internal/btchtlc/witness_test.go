package btchtlc

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/stretchr/testify/require"
)

func TestParseWitnessIdentifiesRedeem(t *testing.T) {
	tree, err := BuildScriptTree(testParams(t))
	require.NoError(t, err)

	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	sig, err := schnorr.Sign(priv, make([]byte, 32))
	require.NoError(t, err)

	secret := make([]byte, 32)
	witness, err := tree.BuildRedeemWitness(sig, secret)
	require.NoError(t, err)

	observed, err := ParseWitness(witness, tree)
	require.NoError(t, err)
	require.Equal(t, SpendRedeem, observed.Kind)
	require.Equal(t, secret, observed.Secret)
}

func TestParseWitnessIdentifiesRefund(t *testing.T) {
	tree, err := BuildScriptTree(testParams(t))
	require.NoError(t, err)

	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	sig, err := schnorr.Sign(priv, make([]byte, 32))
	require.NoError(t, err)

	witness, err := tree.BuildRefundWitness(sig)
	require.NoError(t, err)

	observed, err := ParseWitness(witness, tree)
	require.NoError(t, err)
	require.Equal(t, SpendRefund, observed.Kind)
	require.Nil(t, observed.Secret)
}

func TestParseWitnessRejectsUnexpectedLength(t *testing.T) {
	tree, err := BuildScriptTree(testParams(t))
	require.NoError(t, err)

	_, err = ParseWitness([][]byte{{0x01}}, tree)
	require.Error(t, err)
}
