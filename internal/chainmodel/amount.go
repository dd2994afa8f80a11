package chainmodel

import (
	"database/sql/driver"
	"fmt"
	"math/big"
)

// Amount is a non-negative integer amount in an asset's base units. It is
// encoded on the wire and in storage as a decimal string of arbitrary
// precision, and held internally as a big integer - no float arithmetic
// ever touches an Amount.
type Amount struct {
	v big.Int
}

// ZeroAmount is the additive identity.
func ZeroAmount() Amount {
	return Amount{}
}

// NewAmount builds an Amount from a uint64 of base units.
func NewAmount(units uint64) Amount {
	var a Amount
	a.v.SetUint64(units)
	return a
}

// ParseAmount parses a decimal base-units string (e.g. "150000000000000000").
// Rejects negative values, fractional strings, and malformed input.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	bi, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("chainmodel: invalid amount %q", s)
	}
	if bi.Sign() < 0 {
		return Amount{}, fmt.Errorf("chainmodel: negative amount %q", s)
	}
	a.v = *bi
	return a, nil
}

// MustParseAmount panics on parse failure; only for constants/tests.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String renders the amount as a base-10 decimal string.
func (a Amount) String() string {
	return a.v.String()
}

// Big returns a copy of the underlying big.Int.
func (a Amount) Big() *big.Int {
	return new(big.Int).Set(&a.v)
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a.v.Sign() == 0
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a.v.Sign() > 0
}

// Cmp compares two amounts the way big.Int.Cmp does.
func (a Amount) Cmp(other Amount) int {
	return a.v.Cmp(&other.v)
}

// GreaterOrEqual reports whether a >= other.
func (a Amount) GreaterOrEqual(other Amount) bool {
	return a.Cmp(other) >= 0
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	var out Amount
	out.v.Add(&a.v, &b.v)
	return out
}

// Sub returns a - b. Callers must ensure a >= b; negative results are not
// representable and Sub does not validate this (amounts are non-negative
// by construction at the boundaries that produce them).
func (a Amount) Sub(b Amount) Amount {
	var out Amount
	out.v.Sub(&a.v, &b.v)
	return out
}

// MarshalJSON encodes the amount as a JSON string, matching the wire
// contract of §3 (decimal string, not a JSON number, to avoid precision
// loss for large base-unit amounts).
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.v.String() + `"`), nil
}

// UnmarshalJSON decodes an amount from a JSON string or bare number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer so Amount can be written directly as a
// SQLite TEXT column.
func (a Amount) Value() (driver.Value, error) {
	return a.v.String(), nil
}

// Scan implements sql.Scanner so Amount can be read directly from a SQLite
// TEXT column.
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseAmount(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case []byte:
		parsed, err := ParseAmount(string(v))
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case int64:
		*a = NewAmount(uint64(v))
		return nil
	case nil:
		*a = ZeroAmount()
		return nil
	default:
		return fmt.Errorf("chainmodel: cannot scan %T into Amount", src)
	}
}
