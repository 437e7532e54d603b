package state

import (
	"fmt"

	"github.com/ardanlabs/ethpool/foundation/ether"
	"github.com/ardanlabs/ethpool/foundation/pool"
	"github.com/holiman/uint256"
)

// Receipt describes the outcome of an applied instruction.
type Receipt struct {
	Account pool.AccountID
	Kind    Kind
	Nonce   uint64
	Amount  *uint256.Int // What was applied, a withdrawal can differ from the request.
	Balance *uint256.Int // Total balance of the account after the instruction.
}

// SubmitInstruction validates the signed instruction and applies it to the
// pool. The account's nonce is only consumed when the pool accepts it.
func (s *State) SubmitInstruction(si SignedInstruction) (Receipt, error) {
	if err := si.Validate(); err != nil {
		return Receipt{}, err
	}

	if si.ChainID != s.genesis.ChainID {
		return Receipt{}, fmt.Errorf("got %d, exp %d: %w", si.ChainID, s.genesis.ChainID, ErrChainID)
	}

	from, err := si.FromAccount()
	if err != nil {
		return Receipt{}, err
	}

	amount, err := si.Amount()
	if err != nil {
		return Receipt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if last, exists := s.nonces[from]; exists && si.Nonce <= last {
		return Receipt{}, fmt.Errorf("account %s last nonce %d, got %d: %w", from, last, si.Nonce, ErrNonce)
	}

	applied := amount
	switch si.Kind {
	case KindDeposit:
		err = s.pool.Deposit(from, amount)

	case KindWithdraw:
		applied, err = s.pool.Withdraw(from, amount)

	case KindRewards:
		switch {
		case from != s.team:
			err = fmt.Errorf("account %s: %w", from, ErrNotTeam)
		default:
			err = s.pool.DepositRewards(amount)
		}
	}

	if err != nil {
		s.evHandler("state: SubmitInstruction: REJECTED: %s: kind[%s]: value[%s]: sig[%s]: %s", si, si.Kind, ether.Format(amount), si.SignatureString(), err)
		return Receipt{}, err
	}

	s.nonces[from] = si.Nonce

	rcpt := Receipt{
		Account: from,
		Kind:    si.Kind,
		Nonce:   si.Nonce,
		Amount:  applied,
		Balance: s.pool.TotalBalance(from),
	}

	s.evHandler("state: SubmitInstruction: %s: kind[%s]: value[%s]: balance[%s]", si, si.Kind, ether.Format(applied), ether.Format(rcpt.Balance))

	return rcpt, nil
}

// Preview applies the request to a copy of the pool and reports what the
// instruction would do. The pool and the account's nonce are not changed.
func (s *State) Preview(accountID pool.AccountID, kind Kind, amount *uint256.Int) (Receipt, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Receipt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.pool.Clone()

	applied := amount
	var err error
	switch kind {
	case KindDeposit:
		err = draft.Deposit(accountID, amount)

	case KindWithdraw:
		applied, err = draft.Withdraw(accountID, amount)

	case KindRewards:
		if accountID != s.team {
			return Receipt{}, fmt.Errorf("account %s: %w", accountID, ErrNotTeam)
		}
		err = draft.DepositRewards(amount)
	}

	if err != nil {
		return Receipt{}, err
	}

	rcpt := Receipt{
		Account: accountID,
		Kind:    kind,
		Nonce:   s.nonces[accountID] + 1,
		Amount:  applied,
		Balance: draft.TotalBalance(accountID),
	}

	return rcpt, nil
}

// InjectRewards deposits rewards on behalf of the team account. This is
// used by the node itself for scheduled injections and needs no signature.
func (s *State) InjectRewards(amount *uint256.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.pool.DepositRewards(amount); err != nil {
		s.evHandler("state: InjectRewards: REJECTED: value[%s]: %s", ether.Format(amount), err)
		return err
	}

	s.evHandler("state: InjectRewards: team[%s]: value[%s]", s.team, ether.Format(amount))

	return nil
}
