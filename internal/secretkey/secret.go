package secretkey

import (
	"crypto/sha256"
	"fmt"

	"github.com/klingonswap/bridge/pkg/helpers"
)

// SecretSize and HashSize are both 32 bytes per spec §3.
const (
	SecretSize = 32
	HashSize   = 32
)

// Secret is a 32-byte HTLC preimage.
type Secret [SecretSize]byte

// Hash is the SHA-256 of a Secret.
type Hash [HashSize]byte

// HashOf computes SHA256(secret), the invariant binding secret to hash.
func HashOf(secret Secret) Hash {
	return sha256.Sum256(secret[:])
}

// Verify checks SHA256(secret) == hash in constant time, per spec §3
// invariant 4 and the SecretMismatch error in §7/§8 S4.
func Verify(secret Secret, hash Hash) bool {
	computed := HashOf(secret)
	return helpers.ConstantTimeCompare(computed[:], hash[:])
}

// GenerateSecret produces a fresh cryptographically random secret and its
// hash. Used by tests and by any out-of-band (non-digest-key) secret flow.
func GenerateSecret() (Secret, Hash, error) {
	raw, err := helpers.GenerateSecureRandom(SecretSize)
	if err != nil {
		return Secret{}, Hash{}, fmt.Errorf("secretkey: failed to generate secret: %w", err)
	}
	var s Secret
	copy(s[:], raw)
	return s, HashOf(s), nil
}

// SecretFromBytes validates and wraps a raw 32-byte secret.
func SecretFromBytes(b []byte) (Secret, error) {
	if len(b) != SecretSize {
		return Secret{}, fmt.Errorf("secretkey: secret must be %d bytes, got %d", SecretSize, len(b))
	}
	var s Secret
	copy(s[:], b)
	return s, nil
}

// HashFromBytes validates and wraps a raw 32-byte secret hash.
func HashFromBytes(b []byte) (Hash, error) {
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("secretkey: secret hash must be %d bytes, got %d", HashSize, len(b))
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}
