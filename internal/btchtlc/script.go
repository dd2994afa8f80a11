// Package btchtlc derives the Bitcoin-side P2TR HTLC address for a swap
// (spec §4.3): a Taproot output with a redeem script-path leaf and a
// refund script-path leaf, no key-path spend. It is the Bitcoin analog
// of internal/htlc's EVM AtomicSwap contract - the "contract" here is
// just a script tree, so this package is a pure deriver/parser with no
// chain client of its own.
package btchtlc

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/txscript"
)

// MaxTimelockBlocks bounds the CSV relative timelock to what OP_CHECKSEQUENCEVERIFY
// can express as a 16-bit block count, matching the teacher's refund-script builder.
const MaxTimelockBlocks = 0xFFFF

// BuildRedeemLeafScript builds the redeem script-path leaf:
//
//	OP_SHA256 <secretHash> OP_EQUALVERIFY <redeemerXOnlyPubkey> OP_CHECKSIG
//
// Spendable by the redeemer, revealing the secret in the witness.
func BuildRedeemLeafScript(secretHash []byte, redeemerPubKey *btcec.PublicKey) ([]byte, error) {
	if len(secretHash) != 32 {
		return nil, fmt.Errorf("btchtlc: secret hash must be 32 bytes, got %d", len(secretHash))
	}
	if redeemerPubKey == nil {
		return nil, fmt.Errorf("btchtlc: redeemer pubkey cannot be nil")
	}

	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_SHA256)
	builder.AddData(secretHash)
	builder.AddOp(txscript.OP_EQUALVERIFY)
	builder.AddData(schnorr.SerializePubKey(redeemerPubKey))
	builder.AddOp(txscript.OP_CHECKSIG)
	return builder.Script()
}

// BuildRefundLeafScript builds the refund script-path leaf:
//
//	<timelock> OP_CHECKSEQUENCEVERIFY OP_DROP <initiatorXOnlyPubkey> OP_CHECKSIG
//
// Spendable by the initiator once the relative timelock has elapsed.
func BuildRefundLeafScript(timelock uint32, initiatorPubKey *btcec.PublicKey) ([]byte, error) {
	if timelock == 0 {
		return nil, fmt.Errorf("btchtlc: timelock must be > 0")
	}
	if timelock > MaxTimelockBlocks {
		return nil, fmt.Errorf("btchtlc: timelock %d exceeds CSV max %d", timelock, MaxTimelockBlocks)
	}
	if initiatorPubKey == nil {
		return nil, fmt.Errorf("btchtlc: initiator pubkey cannot be nil")
	}

	builder := txscript.NewScriptBuilder()
	builder.AddInt64(int64(timelock))
	builder.AddOp(txscript.OP_CHECKSEQUENCEVERIFY)
	builder.AddOp(txscript.OP_DROP)
	builder.AddData(schnorr.SerializePubKey(initiatorPubKey))
	builder.AddOp(txscript.OP_CHECKSIG)
	return builder.Script()
}
