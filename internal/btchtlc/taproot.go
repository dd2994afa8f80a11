package btchtlc

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"

	"github.com/klingonswap/bridge/internal/secretkey"
)

// numsInternalKeyHex is the standard BIP-341 Nothing-Up-My-Sleeve point,
// used as the Taproot internal key so the output is unspendable via the
// key path - only the redeem and refund script-path leaves can move funds.
const numsInternalKeyHex = "0250929b74c1a04954b78b4b6035e97a5e078a5a0f28ec96d547bfee9ace803ac0"

var numsInternalKey *btcec.PublicKey

func init() {
	raw, err := hex.DecodeString(numsInternalKeyHex)
	if err != nil {
		panic(fmt.Sprintf("btchtlc: invalid NUMS key constant: %v", err))
	}
	key, err := btcec.ParsePubKey(raw)
	if err != nil {
		panic(fmt.Sprintf("btchtlc: NUMS key does not parse: %v", err))
	}
	numsInternalKey = key
}

// Params describes the Bitcoin side of a swap and everything needed to
// derive its deposit address, mirroring the field set the spec's §4.3
// lists for the P2TR HTLC.
type Params struct {
	SecretHash      secretkey.Hash
	Timelock        uint32
	RedeemerPubKey  *btcec.PublicKey // recipient, spends the redeem leaf
	InitiatorPubKey *btcec.PublicKey // depositor, spends the refund leaf
}

// ScriptTree holds the two leaf scripts and the assembled Taproot tree
// needed to build control blocks for either spend path.
type ScriptTree struct {
	RedeemScript []byte
	RefundScript []byte
	tree         *txscript.IndexedTapScriptTree
	outputKey    *btcec.PublicKey
	outputParity bool
}

// BuildScriptTree constructs the two-leaf (redeem, refund) Taproot tree
// for the given params. Leaf ordering does not matter: txscript computes
// the branch hash from the sorted pair of leaf hashes per BIP-341.
func BuildScriptTree(p Params) (*ScriptTree, error) {
	redeemScript, err := BuildRedeemLeafScript(p.SecretHash[:], p.RedeemerPubKey)
	if err != nil {
		return nil, err
	}
	refundScript, err := BuildRefundLeafScript(p.Timelock, p.InitiatorPubKey)
	if err != nil {
		return nil, err
	}

	redeemLeaf := txscript.NewBaseTapLeaf(redeemScript)
	refundLeaf := txscript.NewBaseTapLeaf(refundScript)
	tree := txscript.AssembleTaprootScriptTree(redeemLeaf, refundLeaf)

	rootHash := tree.RootNode.TapHash()
	outputKey := txscript.ComputeTaprootOutputKey(numsInternalKey, rootHash[:])

	return &ScriptTree{
		RedeemScript: redeemScript,
		RefundScript: refundScript,
		tree:         tree,
		outputKey:    outputKey,
		outputParity: outputKey.Y().Bit(0) == 1,
	}, nil
}

// OutputKey returns the tweaked 32-byte x-only Taproot output key. The
// spec defines the Bitcoin swap_id as this key's hex encoding.
func (t *ScriptTree) OutputKey() [32]byte {
	var out [32]byte
	copy(out[:], schnorr.SerializePubKey(t.outputKey))
	return out
}

// Address encodes the Taproot output key as a bech32m P2TR address for
// the given network.
func (t *ScriptTree) Address(params *chaincfg.Params) (btcutil.Address, error) {
	return btcutil.NewAddressTaproot(schnorr.SerializePubKey(t.outputKey), params)
}

// PkScript returns the scriptPubKey (OP_1 <32-byte-output-key>) for this
// Taproot output, for building the deposit transaction's output or for
// matching against watched outputs.
func (t *ScriptTree) PkScript() ([]byte, error) {
	builder := txscript.NewScriptBuilder()
	builder.AddOp(txscript.OP_1)
	builder.AddData(schnorr.SerializePubKey(t.outputKey))
	return builder.Script()
}

// ControlBlock builds the control block needed to spend the named leaf
// script in the script path, per BIP-341: parity bit, internal key, and
// the Merkle inclusion proof for the other leaf.
func (t *ScriptTree) ControlBlock(script []byte) ([]byte, error) {
	idx, ok := t.leafIndex(script)
	if !ok {
		return nil, fmt.Errorf("btchtlc: script does not match either leaf")
	}
	proof := t.tree.LeafMerkleProofs[idx]
	controlBlock := proof.ToControlBlock(numsInternalKey)
	return controlBlock.ToBytes()
}

func (t *ScriptTree) leafIndex(script []byte) (int, bool) {
	for i, leaf := range t.tree.LeafMerkleProofs {
		if string(leaf.TapLeaf.Script) == string(script) {
			return i, true
		}
	}
	return 0, false
}
