package domain

import "github.com/shopspring/decimal"

// AccountFlow is the aggregate money movement through one account: In sums the
// amounts of postings targeting it, Out sums postings sourced from it. Balances
// are derived from flows on demand and never stored.
type AccountFlow struct {
	In  decimal.Decimal
	Out decimal.Decimal
}

// Add accumulates another flow into this one.
func (f AccountFlow) Add(other AccountFlow) AccountFlow {
	return AccountFlow{In: f.In.Add(other.In), Out: f.Out.Add(other.Out)}
}

// AccountNode is one account in the rendered hierarchy: its own data, the
// balance aggregated over the account and all its descendants, and its children.
type AccountNode struct {
	Account
	Balance  decimal.Decimal
	Children []AccountNode
}

// BalanceFor reduces a flow to a balance under the account type's convention:
// assets grow with inflow, liabilities with outflow (debt repaid shrinks them),
// income counts what flowed out of it, expenses what flowed in.
func (f AccountFlow) BalanceFor(accountType AccountType) decimal.Decimal {
	switch accountType {
	case Asset:
		return f.In.Sub(f.Out)
	case Liability:
		return f.Out.Sub(f.In)
	case Income:
		return f.Out
	case Expense:
		return f.In
	default:
		return decimal.Zero
	}
}
