package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Perspective selects which side of the relationship a running balance is expressed from
type Perspective string

const (
	// Payable is the entity-balance view: what the business owes a driver or supplier
	Payable Perspective = "payable"
	// Receivable is the customer-balance view: what a customer owes the business
	Receivable Perspective = "receivable"
)

// ParsePerspective accepts the perspective names used by callers, case-insensitively
func ParsePerspective(s string) (Perspective, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "payable", "entity":
		return Payable, nil
	case "receivable", "customer":
		return Receivable, nil
	default:
		return "", fmt.Errorf("unknown perspective %q", s)
	}
}

// IsValid reports whether p has a sign table
func (p Perspective) IsValid() bool {
	_, ok := signRules[p]
	return ok
}

// Recognizes reports whether transactions of type t move the balance under p
func (p Perspective) Recognizes(t TransactionType) bool {
	_, ok := signRules[p][t]
	return ok
}

type deltaFunc func(tx Transaction) decimal.Decimal

func credit(tx Transaction) decimal.Decimal { return tx.TotalAmount }

func debit(tx Transaction) decimal.Decimal { return tx.TotalAmount.Neg() }

// The two tables are mirror images on BUY, SELL, PAYMENT and RECEIVE_PAYMENT.
// They must stay separate: folding them into one signed table inverts one of the ledgers.
var signRules = map[Perspective]map[TransactionType]deltaFunc{
	Payable: {
		Buy:     debit,
		Payment: credit,
		Sell: func(tx Transaction) decimal.Decimal {
			return tx.TotalAmount.Sub(tx.PaymentCash).Sub(tx.PaymentUpi)
		},
		ReceivePayment: debit,
	},
	Receivable: {
		Buy:     credit,
		Payment: debit,
		Sell: func(tx Transaction) decimal.Decimal {
			return tx.TotalAmount.Neg().Add(tx.PaymentCash).Add(tx.PaymentUpi)
		},
		ReceivePayment: credit,
		AdvancePayment: credit,
		CreditNote:     credit,
		DebitNote:      debit,
	},
}

// Delta is the signed amount tx adds to a running balance under perspective p.
// Types p does not recognise contribute zero.
func Delta(p Perspective, tx Transaction) decimal.Decimal {
	rule, ok := signRules[p][tx.Type]
	if !ok {
		return decimal.Zero
	}
	return rule(tx)
}
