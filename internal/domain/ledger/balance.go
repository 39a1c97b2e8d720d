package ledger

import "github.com/shopspring/decimal"

// NextBalance resolves the running balance shown at position index of history.
//
// The balance at position 0 is the seed: runningBalance is returned unchanged.
// For index > 0, runningBalance must be the balance at index-1, and the result applies the
// effect of history[index-1]. A row's balance therefore never includes the row's own
// transaction. Passing index == len(history) applies the last transaction and yields the
// closing balance. Any other index returns runningBalance unchanged.
func NextBalance(p Perspective, runningBalance decimal.Decimal, index int, history []Transaction) decimal.Decimal {
	if index <= 0 || index > len(history) {
		return runningBalance
	}
	return runningBalance.Add(Delta(p, history[index-1]))
}

// RunningBalances folds history from seed and returns one balance per position
func RunningBalances(p Perspective, seed decimal.Decimal, history []Transaction) []decimal.Decimal {
	balances := make([]decimal.Decimal, len(history))
	running := seed
	for i := range history {
		running = NextBalance(p, running, i, history)
		balances[i] = running
	}
	return balances
}

// ClosingBalance is the balance after every transaction in history has been applied
func ClosingBalance(p Perspective, seed decimal.Decimal, history []Transaction) decimal.Decimal {
	balances := RunningBalances(p, seed, history)
	if len(balances) == 0 {
		return seed
	}
	return NextBalance(p, balances[len(balances)-1], len(history), history)
}
