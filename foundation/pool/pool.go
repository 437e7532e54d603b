// Package pool implements the accounting core of a pooled rewards ledger.
// Participants deposit principal at different times and rewards injected
// into the pool are split across the principal held at the time of the
// injection. Instead of touching every account on each injection, the pool
// maintains a global reward per share accumulator and every account keeps
// the accumulator value it last settled at. What an account is owed is
// computed lazily as principal * (accumulator - baseline).
package pool

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"
)

// ScaleDecimals is the number of decimals the accumulator is scaled by so
// reward per share ratios keep their precision in integer arithmetic.
const ScaleDecimals = 36

// scale is 10^ScaleDecimals.
var scale = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(ScaleDecimals))

// Pool manages the principal of every participant and the distribution
// of injected rewards. All mutating calls are serialized and reads are
// served from a consistent view.
type Pool struct {
	accounts       map[AccountID]Account
	totalPrincipal *uint256.Int
	accumulator    *uint256.Int
	remainder      *uint256.Int
	totalDeposited *uint256.Int
	totalWithdrawn *uint256.Int
	totalRewards   *uint256.Int
	injections     uint64
	dustBound      uint64
	journal        []Op
	mu             sync.RWMutex
}

// New constructs an empty pool for use.
func New() *Pool {
	p := Pool{}
	p.reset()

	return &p
}

// Reset re-initializes the pool back to its empty state.
func (p *Pool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.reset()
}

// Deposit adds the amount to the account's principal. Any reward the
// account has accrued is settled into the principal first, so the account's
// future share grows with it. The new principal only takes part in
// injections that happen after this call.
func (p *Pool) Deposit(accountID AccountID, amount *uint256.Int) error {
	if accountID == "" {
		return ErrInvalidAccount
	}

	if amount == nil || amount.IsZero() {
		return fmt.Errorf("deposit must be greater than zero: %w", ErrInvalidAmount)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	acct, exists := p.accounts[accountID]
	if !exists {
		acct = newAccount(accountID, p.accumulator, p.injections)
	}

	acct, pending, err := p.settle(acct)
	if err != nil {
		return err
	}

	principal, overflow := new(uint256.Int).AddOverflow(acct.Principal, amount)
	if overflow {
		return fmt.Errorf("deposit for %s: %w", accountID, ErrOverflow)
	}

	totalPrincipal, err := addAll(p.totalPrincipal, pending, amount)
	if err != nil {
		return fmt.Errorf("total principal: %w", err)
	}

	totalDeposited, err := addAll(p.totalDeposited, amount)
	if err != nil {
		return fmt.Errorf("total deposited: %w", err)
	}

	// Every check has passed so the new state can be committed.

	acct.Principal = principal
	p.accounts[accountID] = acct
	p.totalPrincipal = totalPrincipal
	p.totalDeposited = totalDeposited
	p.record(OpDeposit, accountID, amount)

	return nil
}

// DepositRewards distributes the amount across the current principal
// holders in proportion to their principal. A reward can't be injected
// when nobody holds principal since there is nobody to receive it. The
// remainder of the fixed-point division is carried into the next injection.
func (p *Pool) DepositRewards(amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return fmt.Errorf("reward must be greater than zero: %w", ErrInvalidAmount)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.totalPrincipal.IsZero() {
		return ErrNoDepositors
	}

	// Multiply first to keep the precision of the ratio.
	//
	//     increment = (amount * scale + remainder) / totalPrincipal
	//
	numerator, overflow := new(uint256.Int).MulOverflow(amount, scale)
	if overflow {
		return fmt.Errorf("scaling reward: %w", ErrOverflow)
	}
	if numerator, overflow = numerator.AddOverflow(numerator, p.remainder); overflow {
		return fmt.Errorf("scaling reward: %w", ErrOverflow)
	}

	remainder := new(uint256.Int)
	increment, _ := new(uint256.Int).DivMod(numerator, p.totalPrincipal, remainder)

	accumulator, overflow := new(uint256.Int).AddOverflow(p.accumulator, increment)
	if overflow {
		return fmt.Errorf("accumulator: %w", ErrOverflow)
	}

	totalRewards, err := addAll(p.totalRewards, amount)
	if err != nil {
		return fmt.Errorf("total rewards: %w", err)
	}

	p.accumulator = accumulator
	p.remainder = remainder
	p.totalRewards = totalRewards
	p.injections++
	p.dustBound += uint64(len(p.accounts)) + 1
	p.record(OpRewards, "", amount)

	return nil
}

// Withdraw removes the amount from the account's entitlement, which is the
// principal plus any accrued reward. It returns the amount that was actually
// withdrawn so the caller can transfer the funds. A request that exceeds the
// entitlement only by the account's rounding dust withdraws everything.
func (p *Pool) Withdraw(accountID AccountID, amount *uint256.Int) (*uint256.Int, error) {
	if accountID == "" {
		return nil, ErrInvalidAccount
	}

	if amount == nil || amount.IsZero() {
		return nil, fmt.Errorf("withdraw must be greater than zero: %w", ErrInvalidAmount)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	acct, exists := p.accounts[accountID]
	if !exists {
		return nil, fmt.Errorf("account %s holds nothing: %w", accountID, ErrInsufficientBalance)
	}

	acct, pending, err := p.settle(acct)
	if err != nil {
		return nil, err
	}

	withdrawn := amount.Clone()
	if amount.Gt(acct.Principal) {
		excess := new(uint256.Int).Sub(amount, acct.Principal)
		if !excess.IsUint64() || excess.Uint64() > acct.Rounding {
			return nil, fmt.Errorf("requested %s, available %s: %w", amount.Dec(), acct.Principal.Dec(), ErrInsufficientBalance)
		}
		withdrawn = acct.Principal.Clone()
	}

	totalPrincipal, err := addAll(p.totalPrincipal, pending)
	if err != nil {
		return nil, fmt.Errorf("total principal: %w", err)
	}

	totalWithdrawn, err := addAll(p.totalWithdrawn, withdrawn)
	if err != nil {
		return nil, fmt.Errorf("total withdrawn: %w", err)
	}

	acct.Principal = new(uint256.Int).Sub(acct.Principal, withdrawn)
	p.totalPrincipal = totalPrincipal.Sub(totalPrincipal, withdrawn)
	p.totalWithdrawn = totalWithdrawn

	switch {
	case acct.Principal.IsZero():
		delete(p.accounts, accountID)
	default:
		p.accounts[accountID] = acct
	}

	p.record(OpWithdraw, accountID, withdrawn)

	return withdrawn, nil
}

// TotalBalance returns the principal plus the pending reward for the
// account. Unknown accounts have a balance of zero. The pool is not changed.
func (p *Pool) TotalBalance(accountID AccountID) *uint256.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	acct, exists := p.accounts[accountID]
	if !exists {
		return new(uint256.Int)
	}

	return p.balance(acct)
}

// =============================================================================

// reset sets the pool to its empty state. The caller must hold the lock
// or own the pool exclusively.
func (p *Pool) reset() {
	p.accounts = make(map[AccountID]Account)
	p.totalPrincipal = new(uint256.Int)
	p.accumulator = new(uint256.Int)
	p.remainder = new(uint256.Int)
	p.totalDeposited = new(uint256.Int)
	p.totalWithdrawn = new(uint256.Int)
	p.totalRewards = new(uint256.Int)
	p.injections = 0
	p.dustBound = 0
	p.journal = nil
}

// pending calculates the reward accrued by the account since its baseline.
func (p *Pool) pending(acct Account) (*uint256.Int, error) {
	if acct.Principal.IsZero() || !p.accumulator.Gt(acct.Baseline) {
		return new(uint256.Int), nil
	}

	delta := new(uint256.Int).Sub(p.accumulator, acct.Baseline)

	reward, overflow := new(uint256.Int).MulDivOverflow(acct.Principal, delta, scale)
	if overflow {
		return nil, fmt.Errorf("pending reward for %s: %w", acct.AccountID, ErrOverflow)
	}

	return reward, nil
}

// balance returns the principal plus pending reward for the account.
func (p *Pool) balance(acct Account) *uint256.Int {
	reward, err := p.pending(acct)
	if err != nil {
		return acct.Principal.Clone()
	}

	total, overflow := new(uint256.Int).AddOverflow(acct.Principal, reward)
	if overflow {
		return acct.Principal.Clone()
	}

	return total
}

// settle returns a copy of the account with its pending reward folded into
// the principal and the baseline moved to the current accumulator. The
// pool itself is not modified so a failed operation leaves no trace.
func (p *Pool) settle(acct Account) (Account, *uint256.Int, error) {
	reward, err := p.pending(acct)
	if err != nil {
		return Account{}, nil, err
	}

	principal, overflow := new(uint256.Int).AddOverflow(acct.Principal, reward)
	if overflow {
		return Account{}, nil, fmt.Errorf("settling %s: %w", acct.AccountID, ErrOverflow)
	}

	settled := acct.clone()
	settled.Principal = principal
	settled.Baseline = p.accumulator.Clone()
	if !acct.Principal.IsZero() {
		settled.Rounding += p.injections - acct.BaselineInjection
	}
	settled.BaselineInjection = p.injections

	return settled, reward, nil
}

// addAll returns the sum of the values as a new integer.
func addAll(values ...*uint256.Int) (*uint256.Int, error) {
	sum := new(uint256.Int)
	for _, v := range values {
		var overflow bool
		if sum, overflow = sum.AddOverflow(sum, v); overflow {
			return nil, ErrOverflow
		}
	}

	return sum, nil
}
