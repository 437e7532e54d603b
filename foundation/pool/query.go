package pool

import (
	"fmt"
	"sort"

	"github.com/holiman/uint256"
)

// Stats represents the pool wide totals.
type Stats struct {
	Accounts       int
	Injections     uint64
	TotalPrincipal *uint256.Int
	Accumulator    *uint256.Int
	Remainder      *uint256.Int
	TotalDeposited *uint256.Int
	TotalWithdrawn *uint256.Int
	TotalRewards   *uint256.Int
	Liabilities    *uint256.Int // Sum of every account's total balance.
	Dust           *uint256.Int // Funds held that no account can claim.
}

// Account returns a copy of the account with its pending reward settled
// into the principal. Unlike TotalBalance, an unknown account is an error.
func (p *Pool) Account(accountID AccountID) (Account, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	acct, exists := p.accounts[accountID]
	if !exists {
		return Account{}, fmt.Errorf("account %s: %w", accountID, ErrUnknownAccount)
	}

	settled, _, err := p.settle(acct)
	if err != nil {
		return Account{}, err
	}

	return settled, nil
}

// Accounts returns a settled copy of every account ordered by account id.
func (p *Pool) Accounts() []Account {
	p.mu.RLock()
	defer p.mu.RUnlock()

	accts := make([]Account, 0, len(p.accounts))
	for _, acct := range p.accounts {
		settled, _, err := p.settle(acct)
		if err != nil {
			settled = acct.clone()
		}
		accts = append(accts, settled)
	}

	sort.Sort(byAccount(accts))

	return accts
}

// Balances returns the total balance of every account.
func (p *Pool) Balances() map[AccountID]*uint256.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	balances := make(map[AccountID]*uint256.Int, len(p.accounts))
	for accountID, acct := range p.accounts {
		balances[accountID] = p.balance(acct)
	}

	return balances
}

// Stats returns the current totals for the pool.
func (p *Pool) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.stats()
}

// Clone makes a deep copy of the pool including its journal.
func (p *Pool) Clone() *Pool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	clone := Pool{
		accounts:       make(map[AccountID]Account, len(p.accounts)),
		totalPrincipal: p.totalPrincipal.Clone(),
		accumulator:    p.accumulator.Clone(),
		remainder:      p.remainder.Clone(),
		totalDeposited: p.totalDeposited.Clone(),
		totalWithdrawn: p.totalWithdrawn.Clone(),
		totalRewards:   p.totalRewards.Clone(),
		injections:     p.injections,
		dustBound:      p.dustBound,
		journal:        p.copyJournal(),
	}

	for accountID, acct := range p.accounts {
		clone.accounts[accountID] = acct.clone()
	}

	return &clone
}

// =============================================================================

// stats calculates the totals. The caller must hold at least a read lock.
func (p *Pool) stats() Stats {
	liabilities := new(uint256.Int)
	for _, acct := range p.accounts {
		liabilities.Add(liabilities, p.balance(acct))
	}

	funds := new(uint256.Int).Add(p.totalDeposited, p.totalRewards)
	funds.Sub(funds, p.totalWithdrawn)

	dust := new(uint256.Int)
	if funds.Gt(liabilities) {
		dust.Sub(funds, liabilities)
	}

	return Stats{
		Accounts:       len(p.accounts),
		Injections:     p.injections,
		TotalPrincipal: p.totalPrincipal.Clone(),
		Accumulator:    p.accumulator.Clone(),
		Remainder:      p.remainder.Clone(),
		TotalDeposited: p.totalDeposited.Clone(),
		TotalWithdrawn: p.totalWithdrawn.Clone(),
		TotalRewards:   p.totalRewards.Clone(),
		Liabilities:    liabilities,
		Dust:           dust,
	}
}
