package pool

import (
	"fmt"

	"github.com/holiman/uint256"
)

// OpKind identifies the kind of mutation recorded in the journal.
type OpKind string

// Set of mutations the pool records.
const (
	OpDeposit  OpKind = "deposit"
	OpWithdraw OpKind = "withdraw"
	OpRewards  OpKind = "rewards"
)

// Op represents a successful mutation of the pool. Replaying the journal
// of a pool in order against an empty pool reproduces the same state.
type Op struct {
	Kind    OpKind       `json:"kind"`
	Account AccountID    `json:"account,omitempty"`
	Amount  *uint256.Int `json:"amount"`
}

// Replay constructs a new pool by applying the operations in order.
func Replay(ops []Op) (*Pool, error) {
	p := New()
	for i, op := range ops {
		if err := p.Apply(op); err != nil {
			return nil, fmt.Errorf("op[%d] %s: %w", i, op.Kind, err)
		}
	}

	return p, nil
}

// Apply performs the specified operation against the pool.
func (p *Pool) Apply(op Op) error {
	switch op.Kind {
	case OpDeposit:
		return p.Deposit(op.Account, op.Amount)

	case OpRewards:
		return p.DepositRewards(op.Amount)

	case OpWithdraw:
		_, err := p.Withdraw(op.Account, op.Amount)
		return err
	}

	return fmt.Errorf("unknown op kind %q", op.Kind)
}

// Journal returns a copy of the operations applied to the pool.
func (p *Pool) Journal() []Op {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.copyJournal()
}

// =============================================================================

// record appends the operation to the journal. The caller must hold the lock.
func (p *Pool) record(kind OpKind, accountID AccountID, amount *uint256.Int) {
	p.journal = append(p.journal, Op{
		Kind:    kind,
		Account: accountID,
		Amount:  amount.Clone(),
	})
}

// copyJournal makes a deep copy of the journal. The caller must hold at
// least a read lock.
func (p *Pool) copyJournal() []Op {
	ops := make([]Op, len(p.journal))
	for i, op := range p.journal {
		ops[i] = Op{
			Kind:    op.Kind,
			Account: op.Account,
			Amount:  op.Amount.Clone(),
		}
	}

	return ops
}
