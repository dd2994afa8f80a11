package secretkey

import "testing"

func TestHashOfMatchesSHA256(t *testing.T) {
	var s Secret
	for i := range s {
		s[i] = byte(i)
	}
	h1 := HashOf(s)
	h2 := HashOf(s)
	if h1 != h2 {
		t.Error("HashOf should be deterministic")
	}
}

func TestVerifyAcceptsMatchingPreimage(t *testing.T) {
	secret, hash, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret error = %v", err)
	}
	if !Verify(secret, hash) {
		t.Error("Verify should accept the correct preimage")
	}
}

func TestVerifyRejectsMismatch(t *testing.T) {
	secret, _, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret error = %v", err)
	}
	var wrongHash Hash
	wrongHash[0] = 0xFF
	if Verify(secret, wrongHash) {
		t.Error("Verify should reject a mismatched hash")
	}
}

func TestGenerateSecretProducesDistinctValues(t *testing.T) {
	s1, _, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret error = %v", err)
	}
	s2, _, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret error = %v", err)
	}
	if s1 == s2 {
		t.Error("two calls to GenerateSecret should not collide")
	}
}

func TestGenerateSecretHashIsConsistent(t *testing.T) {
	secret, hash, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret error = %v", err)
	}
	if HashOf(secret) != hash {
		t.Error("GenerateSecret's returned hash must equal HashOf(secret)")
	}
}

func TestSecretFromBytesValidatesLength(t *testing.T) {
	if _, err := SecretFromBytes(make([]byte, 31)); err == nil {
		t.Error("expected error for short secret")
	}
	if _, err := SecretFromBytes(make([]byte, 33)); err == nil {
		t.Error("expected error for long secret")
	}
	s, err := SecretFromBytes(make([]byte, 32))
	if err != nil {
		t.Errorf("unexpected error for 32-byte secret: %v", err)
	}
	if s != (Secret{}) {
		t.Error("expected zero secret for all-zero input")
	}
}

func TestHashFromBytesValidatesLength(t *testing.T) {
	if _, err := HashFromBytes(make([]byte, 20)); err == nil {
		t.Error("expected error for short hash")
	}
	if _, err := HashFromBytes(make([]byte, 32)); err != nil {
		t.Errorf("unexpected error for 32-byte hash: %v", err)
	}
}
