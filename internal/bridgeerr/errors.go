// Package bridgeerr defines the bridge's error taxonomy (spec §7) as typed,
// wrappable errors with an HTTP status mapping, so every HTTP handler in
// internal/httpapi and internal/quote reports failures the same way.
package bridgeerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error per the taxonomy table in spec §7.
type Kind string

const (
	KindInvalidRequest    Kind = "InvalidRequest"
	KindUnsupportedAsset  Kind = "UnsupportedAsset"
	KindDuplicate         Kind = "Duplicate"
	KindRpcTransient      Kind = "RpcTransient"
	KindChainMismatch     Kind = "ChainMismatch"
	KindSecretMismatch    Kind = "SecretMismatch"
	KindStorage           Kind = "Storage"
	KindContractRevert    Kind = "ContractRevert"
	KindInternal          Kind = "Internal"
)

// Error is a taxonomy-tagged error that carries a human message and
// optionally wraps an underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds a taxonomy error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a taxonomy error around an existing error.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err (or something it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}

// KindOf extracts the Kind of err, defaulting to KindInternal if err is not
// (or does not wrap) a *Error.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// HTTPStatus maps a Kind to the status code the HTTP layer should return.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidRequest, KindUnsupportedAsset, KindSecretMismatch:
		return http.StatusBadRequest
	case KindDuplicate:
		return http.StatusConflict
	case KindStorage, KindRpcTransient, KindContractRevert, KindInternal:
		return http.StatusInternalServerError
	case KindChainMismatch:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Convenience constructors for the most common taxonomy members.

func InvalidRequest(format string, args ...interface{}) *Error {
	return New(KindInvalidRequest, fmt.Sprintf(format, args...))
}

func UnsupportedAsset(format string, args ...interface{}) *Error {
	return New(KindUnsupportedAsset, fmt.Sprintf(format, args...))
}

func Duplicate(format string, args ...interface{}) *Error {
	return New(KindDuplicate, fmt.Sprintf(format, args...))
}

func SecretMismatch() *Error {
	return New(KindSecretMismatch, "secret does not hash to the order's secret_hash")
}

func Storage(cause error) *Error {
	return Wrap(KindStorage, "storage operation failed", cause)
}

func RpcTransient(cause error) *Error {
	return Wrap(KindRpcTransient, "upstream RPC call failed", cause)
}

func ContractRevert(reason string) *Error {
	return New(KindContractRevert, reason)
}
