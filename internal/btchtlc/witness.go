package btchtlc

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/wire"
)

// SpendKind identifies which leaf a script-path witness satisfied.
type SpendKind int

const (
	// SpendUnknown means the witness did not match either leaf shape.
	SpendUnknown SpendKind = iota
	SpendRedeem
	SpendRefund
)

// BuildRedeemWitness assembles the script-path witness for the redeem
// leaf: [signature, secret, redeem_script, control_block].
func (t *ScriptTree) BuildRedeemWitness(sig *schnorr.Signature, secret []byte) (wire.TxWitness, error) {
	controlBlock, err := t.ControlBlock(t.RedeemScript)
	if err != nil {
		return nil, err
	}
	return wire.TxWitness{
		sig.Serialize(),
		secret,
		t.RedeemScript,
		controlBlock,
	}, nil
}

// BuildRefundWitness assembles the script-path witness for the refund
// leaf: [signature, refund_script, control_block].
func (t *ScriptTree) BuildRefundWitness(sig *schnorr.Signature) (wire.TxWitness, error) {
	controlBlock, err := t.ControlBlock(t.RefundScript)
	if err != nil {
		return nil, err
	}
	return wire.TxWitness{
		sig.Serialize(),
		t.RefundScript,
		controlBlock,
	}, nil
}

// ObservedSpend is what a chain watcher recovers from a confirmed
// spending transaction's witness stack.
type ObservedSpend struct {
	Kind   SpendKind
	Secret []byte // only set for SpendRedeem
}

// ParseWitness classifies a witness stack observed on-chain as a redeem
// or refund spend of this script tree, extracting the revealed secret on
// a redeem. It matches purely on which leaf script is present in the
// witness, since that is the one element that differs structurally
// between the two spend paths.
func ParseWitness(witness wire.TxWitness, tree *ScriptTree) (ObservedSpend, error) {
	switch len(witness) {
	case 4:
		sig, secret, script, controlBlock := witness[0], witness[1], witness[2], witness[3]
		_ = sig
		_ = controlBlock
		if !bytes.Equal(script, tree.RedeemScript) {
			return ObservedSpend{}, fmt.Errorf("btchtlc: 4-element witness script does not match redeem leaf")
		}
		return ObservedSpend{Kind: SpendRedeem, Secret: secret}, nil
	case 3:
		sig, script, controlBlock := witness[0], witness[1], witness[2]
		_ = sig
		_ = controlBlock
		if !bytes.Equal(script, tree.RefundScript) {
			return ObservedSpend{}, fmt.Errorf("btchtlc: 3-element witness script does not match refund leaf")
		}
		return ObservedSpend{Kind: SpendRefund}, nil
	default:
		return ObservedSpend{}, fmt.Errorf("btchtlc: unexpected witness length %d", len(witness))
	}
}
