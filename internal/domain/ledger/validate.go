package ledger

import (
	"fmt"
	"time"

	"github.com/hirosato/trade-ledger/backend/internal/domain/errors"
)

// Issue reasons reported by Validate
const (
	ReasonUnreadableAmount  = "UNREADABLE_AMOUNT"
	ReasonNegativeAmount    = "NEGATIVE_AMOUNT"
	ReasonSettlementNotSale = "SETTLEMENT_ON_NON_SALE"
	ReasonOverSettled       = "SETTLEMENT_EXCEEDS_TOTAL"
	ReasonUnknownType       = "UNKNOWN_TYPE"
	ReasonUnrecognizedType  = "TYPE_IGNORED_BY_PERSPECTIVE"
	ReasonInvalidDate       = "INVALID_DATE"
)

// Issue describes a data-quality problem with one history entry
type Issue struct {
	Index         int    `json:"index"`
	TransactionID string `json:"transactionId,omitempty"`
	Field         string `json:"field,omitempty"`
	Reason        string `json:"reason"`
	Message       string `json:"message"`
}

// Validate reports data-quality problems in history. It never changes how balances fold;
// a transaction with issues still moves the balance exactly as the sign table says.
// An empty perspective skips the check for types the perspective ignores.
func Validate(p Perspective, history []Transaction) []Issue {
	var issues []Issue
	for i, tx := range history {
		issues = append(issues, validateEntry(p, i, tx)...)
	}
	return issues
}

func validateEntry(p Perspective, index int, tx Transaction) []Issue {
	var issues []Issue
	add := func(field, reason, message string) {
		issues = append(issues, Issue{
			Index:         index,
			TransactionID: tx.TransactionID,
			Field:         field,
			Reason:        reason,
			Message:       message,
		})
	}

	for _, field := range tx.coerced {
		add(field, ReasonUnreadableAmount, field+" is not a number and was treated as 0")
	}

	if !tx.Type.IsKnown() {
		add("type", ReasonUnknownType, fmt.Sprintf("transaction type %q is not recognised", tx.Type))
	} else if p != "" && !p.Recognizes(tx.Type) {
		add("type", ReasonUnrecognizedType, fmt.Sprintf("%s does not move a %s balance", tx.Type, p))
	}

	if tx.Date != "" {
		if _, err := time.Parse("2006-01-02", tx.Date); err != nil {
			add("date", ReasonInvalidDate, "date must be in YYYY-MM-DD format")
		}
	}

	amounts := []struct {
		field string
		value bool
	}{
		{"totalAmount", tx.TotalAmount.IsNegative()},
		{"paymentCash", tx.PaymentCash.IsNegative()},
		{"paymentUpi", tx.PaymentUpi.IsNegative()},
	}
	for _, a := range amounts {
		if a.value {
			add(a.field, ReasonNegativeAmount, a.field+" must not be negative")
		}
	}

	if tx.Type != Sell {
		if !tx.PaymentCash.IsZero() || !tx.PaymentUpi.IsZero() {
			add("paymentCash", ReasonSettlementNotSale, "cash and UPI settlement only apply to SELL")
		}
	} else if tx.Settlement().GreaterThan(tx.TotalAmount) {
		add("paymentCash", ReasonOverSettled,
			fmt.Sprintf("cash %s + UPI %s exceeds total %s", tx.PaymentCash, tx.PaymentUpi, tx.TotalAmount))
	}

	return issues
}

// CheckChronological asserts that dated entries of history are in ascending date order.
// Undated entries are skipped.
func CheckChronological(history []Transaction) error {
	last, lastIndex := "", -1
	for i, tx := range history {
		if tx.Date == "" {
			continue
		}
		if last != "" && tx.Date < last {
			return errors.NewValidationError("transaction history is not in chronological order").
				WithDetail("index", i).
				WithDetail("date", tx.Date).
				WithDetail("previousIndex", lastIndex).
				WithDetail("previousDate", last)
		}
		last, lastIndex = tx.Date, i
	}
	return nil
}
