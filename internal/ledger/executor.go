package ledger

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/crossbank/refunder/internal/domain"
)

// Sink is the balance read/write capability the executor mutates through.
type Sink interface {
	ReadBalance(accountNumber string) (decimal.Decimal, error)
	WriteBalance(accountNumber string, balance decimal.Decimal) error
}

// Executor applies a case's account operations strictly in the
// decision-tree-determined order. Balances are staged in memory first and
// written only once the whole intent list has been computed, so a failed
// run applies nothing.
//
// No balance floor is enforced: nostro and vostro accounts legitimately go
// negative during return processing.
type Executor struct {
	sink Sink
}

func NewExecutor(sink Sink) *Executor {
	return &Executor{sink: sink}
}

// Apply fills in before/after balances for every intent and commits the
// final balance of each touched account. Reads within a run go through the
// staged view, so same-account sequences compose in order. An empty intent
// list is a no-op.
func (x *Executor) Apply(intents []domain.AccountOperation) ([]domain.AccountOperation, error) {
	if len(intents) == 0 {
		return []domain.AccountOperation{}, nil
	}

	staged := make(map[string]decimal.Decimal, len(intents))
	var order []string

	applied := make([]domain.AccountOperation, 0, len(intents))
	for _, op := range intents {
		before, ok := staged[op.AccountNumber]
		if !ok {
			bal, err := x.sink.ReadBalance(op.AccountNumber)
			if err != nil {
				return nil, fmt.Errorf("read balance %s: %w", op.AccountNumber, err)
			}
			before = bal
			order = append(order, op.AccountNumber)
		}

		var after decimal.Decimal
		switch op.Type {
		case domain.OpDebit:
			after = before.Sub(op.Amount)
		case domain.OpCredit:
			after = before.Add(op.Amount)
		default:
			return nil, fmt.Errorf("unknown operation type %q", op.Type)
		}

		op.BalanceBefore = before
		op.BalanceAfter = after
		staged[op.AccountNumber] = after
		applied = append(applied, op)
	}

	for _, acct := range order {
		if err := x.sink.WriteBalance(acct, staged[acct]); err != nil {
			return nil, fmt.Errorf("write balance %s: %w", acct, err)
		}
	}

	for _, op := range applied {
		log.Printf("[ledger] %s %s %s on %s: %s -> %s",
			op.Type, op.Currency, op.Amount, op.AccountNumber, op.BalanceBefore, op.BalanceAfter)
	}
	return applied, nil
}
