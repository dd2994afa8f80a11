// Package secretkey implements deterministic per-nonce secret derivation
// from a user's long-lived DigestKey (spec §3), so a user can regenerate
// the secret for any of their orders without the server ever storing it.
package secretkey

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// domainTag is mixed into every signed message, matching spec §3's
// `sign(digestKey, "Avalanche Bridge" || nonce)` derivation.
const domainTag = "Avalanche Bridge"

// DigestKey is a user-local 32-byte secp256k1 private key used only to
// derive per-order secrets; it is never transmitted to or stored by the
// bridge.
type DigestKey struct {
	priv *btcec.PrivateKey
}

// NewDigestKey validates and wraps 32 raw key bytes. Per spec §3 the key
// must satisfy 1 <= k < n for the secp256k1 group order n.
func NewDigestKey(raw []byte) (*DigestKey, error) {
	if len(raw) != 32 {
		return nil, fmt.Errorf("secretkey: digest key must be 32 bytes, got %d", len(raw))
	}

	var scalar secp256k1.ModNScalar
	overflow := scalar.SetByteSlice(raw)
	if overflow {
		return nil, fmt.Errorf("secretkey: digest key out of range (k >= n)")
	}
	if scalar.IsZero() {
		return nil, fmt.Errorf("secretkey: digest key must be non-zero (k >= 1)")
	}

	priv, _ := btcec.PrivKeyFromBytes(raw)
	return &DigestKey{priv: priv}, nil
}

// PublicKey returns the compressed secp256k1 public key for this digest key.
func (k *DigestKey) PublicKey() []byte {
	return k.priv.PubKey().SerializeCompressed()
}

// DeriveSecret computes the deterministic secret for a given nonce:
// SHA256(sign(digestKey, "Avalanche Bridge" || nonce)). ECDSA signing
// here uses RFC 6979 deterministic nonces, so the same (digestKey, nonce)
// pair always yields the same signature and therefore the same secret -
// no server-side state is required to regenerate it.
func (k *DigestKey) DeriveSecret(nonce uint64) [32]byte {
	msg := signedMessage(nonce)
	digest := sha256.Sum256(msg)
	sig := btcecdsa.Sign(k.priv, digest[:])
	return sha256.Sum256(sig.Serialize())
}

// DeriveSecretHash derives the secret for nonce and returns its SHA-256
// hash, the value that gets embedded in the CreateOrder request.
func (k *DigestKey) DeriveSecretHash(nonce uint64) [32]byte {
	secret := k.DeriveSecret(nonce)
	return sha256.Sum256(secret[:])
}

func signedMessage(nonce uint64) []byte {
	buf := make([]byte, len(domainTag)+8)
	copy(buf, domainTag)
	binary.BigEndian.PutUint64(buf[len(domainTag):], nonce)
	return buf
}
