package ledger

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !dec(want).Equal(got) {
		assert.Fail(t, fmt.Sprintf("want %s, got %s", want, got), msgAndArgs...)
	}
}

func tx(typ TransactionType, total string) Transaction {
	return Transaction{Type: typ, TotalAmount: dec(total)}
}

func sale(total, cash, upi string) Transaction {
	return Transaction{Type: Sell, TotalAmount: dec(total), PaymentCash: dec(cash), PaymentUpi: dec(upi)}
}

func TestNextBalance_FirstPositionReturnsSeed(t *testing.T) {
	history := []Transaction{tx(Buy, "100"), tx(Payment, "50")}

	for _, p := range []Perspective{Payable, Receivable} {
		for _, seed := range []string{"0", "1234.56", "-99.5"} {
			got := NextBalance(p, dec(seed), 0, history)
			assertDecimal(t, seed, got, "perspective %s", p)
		}
	}
}

func TestNextBalance_PayableSignRules(t *testing.T) {
	tests := []struct {
		name  string
		prior Transaction
		want  string
	}{
		{"buy reduces what the business owes", tx(Buy, "100"), "400"},
		{"payment increases it", tx(Payment, "100"), "600"},
		{"sell adds the unsettled part", sale("100", "40", "20"), "540"},
		{"receive payment reduces it", tx(ReceivePayment, "100"), "400"},
		{"advance payment is ignored", tx(AdvancePayment, "100"), "500"},
		{"credit note is ignored", tx(CreditNote, "100"), "500"},
		{"debit note is ignored", tx(DebitNote, "100"), "500"},
		{"unknown type is ignored", tx("REFUND", "100"), "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := []Transaction{tt.prior, tx(Buy, "999")}
			got := NextBalance(Payable, dec("500"), 1, history)
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestNextBalance_ReceivableSignRules(t *testing.T) {
	tests := []struct {
		name  string
		prior Transaction
		want  string
	}{
		{"buy", tx(Buy, "100"), "600"},
		{"payment", tx(Payment, "100"), "400"},
		{"sell subtracts the unsettled part", sale("100", "40", "20"), "460"},
		{"receive payment", tx(ReceivePayment, "100"), "600"},
		{"advance payment", tx(AdvancePayment, "100"), "600"},
		{"credit note", tx(CreditNote, "50"), "550"},
		{"debit note", tx(DebitNote, "50"), "450"},
		{"unknown type", tx("REFUND", "100"), "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := []Transaction{tt.prior, tx(Buy, "999")}
			got := NextBalance(Receivable, dec("500"), 1, history)
			assertDecimal(t, tt.want, got)
		})
	}
}

func TestNextBalance_SaleSettlementBothPerspectives(t *testing.T) {
	history := []Transaction{sale("100", "40", "20"), tx(Buy, "1")}

	assertDecimal(t, "40", NextBalance(Payable, decimal.Zero, 1, history))
	assertDecimal(t, "-40", NextBalance(Receivable, decimal.Zero, 1, history))
}

func TestNextBalance_UsesPreviousTransactionNotCurrent(t *testing.T) {
	// The row's own transaction must not move its balance.
	history := []Transaction{tx(Payment, "10"), tx(Buy, "1000")}

	got := NextBalance(Payable, dec("0"), 1, history)

	assertDecimal(t, "10", got)
}

func TestNextBalance_OutOfRangeIndex(t *testing.T) {
	history := []Transaction{tx(Buy, "100")}

	assertDecimal(t, "7", NextBalance(Payable, dec("7"), -1, history))
	assertDecimal(t, "7", NextBalance(Payable, dec("7"), 2, history))
	assertDecimal(t, "7", NextBalance(Payable, dec("7"), 0, nil))
}

func TestNextBalance_ClosingPosition(t *testing.T) {
	history := []Transaction{tx(Buy, "100")}

	got := NextBalance(Payable, dec("0"), len(history), history)

	assertDecimal(t, "-100", got)
}

func TestRunningBalances_LookBackScenario(t *testing.T) {
	// Index 2 holds the balance before the PAYMENT on that row; the PAYMENT
	// only shows up in the closing balance.
	history := []Transaction{
		tx(Buy, "1000"),
		sale("1500", "500", "500"),
		tx(Payment, "200"),
	}

	balances := RunningBalances(Payable, decimal.Zero, history)

	require.Len(t, balances, 3)
	assertDecimal(t, "0", balances[0])
	assertDecimal(t, "-1000", balances[1])
	assertDecimal(t, "-500", balances[2])
	assertDecimal(t, "-300", ClosingBalance(Payable, decimal.Zero, history))
}

func TestRunningBalances_ReceivableScenario(t *testing.T) {
	history := []Transaction{
		tx(AdvancePayment, "300"),
		sale("1000", "200", "100"),
		tx(ReceivePayment, "250"),
		tx(CreditNote, "50"),
		tx(DebitNote, "20"),
	}

	balances := RunningBalances(Receivable, dec("100"), history)

	want := []string{"100", "400", "-300", "-50", "0"}
	require.Len(t, balances, len(want))
	for i, w := range want {
		assertDecimal(t, w, balances[i], "index %d", i)
	}
	assertDecimal(t, "-20", ClosingBalance(Receivable, dec("100"), history))
}

func TestRunningBalances_MatchesSequentialNextBalance(t *testing.T) {
	history := []Transaction{
		tx(Buy, "10.25"), sale("30", "5", "5"), tx(ReceivePayment, "4.75"), tx(Payment, "1"),
	}

	balances := RunningBalances(Payable, dec("2"), history)

	running := dec("2")
	for i := range history {
		running = NextBalance(Payable, running, i, history)
		assertDecimal(t, running.String(), balances[i], "index %d", i)
	}
}

func TestRunningBalances_Idempotent(t *testing.T) {
	history := []Transaction{tx(Buy, "1000"), sale("1500", "500", "500"), tx(Payment, "200")}
	snapshot := append([]Transaction(nil), history...)

	first := RunningBalances(Receivable, dec("12.5"), history)
	second := RunningBalances(Receivable, dec("12.5"), history)

	require.Len(t, second, len(first))
	for i := range first {
		assertDecimal(t, first[i].String(), second[i])
	}
	assert.Equal(t, snapshot, history)
}

func TestRunningBalances_Empty(t *testing.T) {
	assert.Empty(t, RunningBalances(Payable, dec("5"), nil))
	assertDecimal(t, "5", ClosingBalance(Payable, dec("5"), nil))
}

func TestRunningBalances_OrderMatters(t *testing.T) {
	history := []Transaction{tx(Buy, "100"), tx(Payment, "40"), tx(Buy, "1")}
	reordered := []Transaction{history[1], history[0], history[2]}

	a := RunningBalances(Payable, decimal.Zero, history)
	b := RunningBalances(Payable, decimal.Zero, reordered)

	assert.False(t, a[1].Equal(b[1]))
}

func TestDelta_UnknownPerspective(t *testing.T) {
	assert.True(t, Delta("sideways", tx(Buy, "100")).IsZero())
}

func TestParsePerspective(t *testing.T) {
	tests := []struct {
		in      string
		want    Perspective
		wantErr bool
	}{
		{"payable", Payable, false},
		{" Entity ", Payable, false},
		{"RECEIVABLE", Receivable, false},
		{"customer", Receivable, false},
		{"", "", true},
		{"both", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePerspective(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPerspective_Recognizes(t *testing.T) {
	assert.True(t, Receivable.Recognizes(CreditNote))
	assert.False(t, Payable.Recognizes(CreditNote))
	assert.False(t, Payable.Recognizes(AdvancePayment))
	assert.True(t, Payable.Recognizes(ReceivePayment))
	assert.False(t, Perspective("x").IsValid())
}
