package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// BuildStatement folds the full history of an account and keeps the rows inside window.
// Balances are always computed over the whole history so that a narrowed window shows the
// same figures as the unfiltered ledger.
func BuildStatement(account Account, p Perspective, history []Transaction, window DateRange, now time.Time) *Statement {
	balances := RunningBalances(p, account.OpeningBalance, history)
	closing := ClosingBalance(p, account.OpeningBalance, history)

	// balanceAt(len(history)) is the closing balance
	balanceAt := func(i int) decimal.Decimal {
		if i >= len(balances) {
			return closing
		}
		return balances[i]
	}

	statement := &Statement{
		PartyID:        account.PartyID,
		PartyName:      account.Name,
		Perspective:    p,
		Currency:       account.Currency,
		From:           window.From,
		To:             window.To,
		OpeningBalance: account.OpeningBalance,
		ClosingBalance: closing,
		Rows:           make([]StatementRow, 0, len(history)),
		Summary: StatementSummary{
			Totals:       make(map[TransactionType]decimal.Decimal),
			CashReceived: decimal.Zero,
			UpiReceived:  decimal.Zero,
		},
		Issues:      Validate(p, history),
		GeneratedAt: now.UTC(),
	}

	first, last := -1, -1
	for i, tx := range history {
		if !window.Contains(tx.Date) {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i

		statement.Rows = append(statement.Rows, StatementRow{
			Index:       i,
			Transaction: tx,
			Balance:     balances[i],
		})

		total, ok := statement.Summary.Totals[tx.Type]
		if !ok {
			total = decimal.Zero
		}
		statement.Summary.Totals[tx.Type] = total.Add(tx.TotalAmount)
		if tx.Type == Sell {
			statement.Summary.CashReceived = statement.Summary.CashReceived.Add(tx.PaymentCash)
			statement.Summary.UpiReceived = statement.Summary.UpiReceived.Add(tx.PaymentUpi)
		}
	}

	if first < 0 {
		// Nothing in the window: carry the balance across at the window's position.
		pos := 0
		for pos < len(history) && window.From != "" && history[pos].Date < window.From {
			pos++
		}
		statement.BroughtForward = balanceAt(pos)
		statement.CarriedForward = statement.BroughtForward
	} else {
		statement.BroughtForward = balances[first]
		statement.CarriedForward = balanceAt(last + 1)
	}

	statement.Summary.NetChange = statement.CarriedForward.Sub(statement.BroughtForward)
	statement.Summary.TransactionCount = len(statement.Rows)
	return statement
}
