package bridgeerr

import (
	"errors"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindRpcTransient, "getLogs failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if KindOf(err) != KindRpcTransient {
		t.Errorf("KindOf = %s, want RpcTransient", KindOf(err))
	}
}

func TestIsChecksKind(t *testing.T) {
	err := SecretMismatch()
	if !Is(err, KindSecretMismatch) {
		t.Error("expected Is to match KindSecretMismatch")
	}
	if Is(err, KindDuplicate) {
		t.Error("did not expect Is to match KindDuplicate")
	}
}

func TestKindOfNonTaxonomyError(t *testing.T) {
	plain := errors.New("boom")
	if KindOf(plain) != KindInternal {
		t.Errorf("KindOf(plain) = %s, want Internal", KindOf(plain))
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindInvalidRequest:   http.StatusBadRequest,
		KindUnsupportedAsset: http.StatusBadRequest,
		KindSecretMismatch:   http.StatusBadRequest,
		KindDuplicate:        http.StatusConflict,
		KindStorage:          http.StatusInternalServerError,
		KindChainMismatch:    http.StatusServiceUnavailable,
	}
	for kind, want := range cases {
		if got := HTTPStatus(kind); got != want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", kind, got, want)
		}
	}
}
