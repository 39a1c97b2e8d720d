package ledger

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Bounds on a readable amount. Anything larger or finer is unreadable.
const (
	maxAmountIntegerDigits = 18
	maxAmountScale         = 18
)

// CoerceAmount reads a monetary JSON value the way the ledger has always treated amounts:
// missing, null and empty values are zero, and so is anything that is not a finite number.
// The second result is false only when the value was present but unreadable, so callers
// that care can report it instead of silently using zero.
func CoerceAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, true
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, false
		}
		return ParseAmount(s)
	}
	return ParseAmount(string(raw))
}

// ParseAmount reads a textual amount. Blank text is zero; unreadable text is zero and not ok.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	amount, err := decimal.NewFromString(s)
	if err != nil || !WithinBounds(amount) {
		return decimal.Zero, false
	}
	return amount, true
}

// WithinBounds reports whether amount fits the digit bounds of a readable amount.
// It works from the coefficient and exponent without expanding the value.
func WithinBounds(amount decimal.Decimal) bool {
	exp := int64(amount.Exponent())
	if -exp > maxAmountScale {
		return false
	}
	digits := int64(len(new(big.Int).Abs(amount.Coefficient()).String()))
	return digits+exp <= maxAmountIntegerDigits
}

// MarkCoerced records that field held an unreadable amount and was set to zero
func (t *Transaction) MarkCoerced(field string) {
	t.coerced = append(t.coerced, field)
}

type transactionAlias Transaction

// UnmarshalJSON decodes a transaction, coercing monetary fields with CoerceAmount
func (t *Transaction) UnmarshalJSON(data []byte) error {
	aux := struct {
		*transactionAlias
		TotalAmount json.RawMessage `json:"totalAmount"`
		PaymentCash json.RawMessage `json:"paymentCash"`
		PaymentUpi  json.RawMessage `json:"paymentUpi"`
	}{transactionAlias: (*transactionAlias)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	t.coerced = nil
	fields := []struct {
		name string
		raw  json.RawMessage
		dst  *decimal.Decimal
	}{
		{"totalAmount", aux.TotalAmount, &t.TotalAmount},
		{"paymentCash", aux.PaymentCash, &t.PaymentCash},
		{"paymentUpi", aux.PaymentUpi, &t.PaymentUpi},
	}
	for _, f := range fields {
		amount, ok := CoerceAmount(f.raw)
		if !ok {
			t.MarkCoerced(f.name)
		}
		*f.dst = amount
	}
	return nil
}
