package pool

import (
	"fmt"

	"github.com/holiman/uint256"
	"go.uber.org/multierr"
)

// Verify checks the accounting invariants of the pool and returns every
// violation it finds. A nil error means the books balance.
func (p *Pool) Verify() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var err error

	principal := new(uint256.Int)
	for accountID, acct := range p.accounts {
		principal.Add(principal, acct.Principal)

		if acct.Principal.IsZero() {
			err = multierr.Append(err, fmt.Errorf("account %s: zero principal not purged", accountID))
		}

		if acct.Baseline.Gt(p.accumulator) {
			err = multierr.Append(err, fmt.Errorf("account %s: baseline %s ahead of accumulator %s", accountID, acct.Baseline.Dec(), p.accumulator.Dec()))
		}

		if acct.BaselineInjection > p.injections {
			err = multierr.Append(err, fmt.Errorf("account %s: baseline injection %d ahead of %d", accountID, acct.BaselineInjection, p.injections))
		}
	}

	if !principal.Eq(p.totalPrincipal) {
		err = multierr.Append(err, fmt.Errorf("total principal %s, sum of accounts %s", p.totalPrincipal.Dec(), principal.Dec()))
	}

	if p.injections == 0 && !p.accumulator.IsZero() {
		err = multierr.Append(err, fmt.Errorf("accumulator %s without injections", p.accumulator.Dec()))
	}

	// Everything owed must be covered by what came in minus what went out,
	// and what can't be claimed is bounded by the rounding of each injection.

	st := p.stats()

	funds := new(uint256.Int).Add(st.TotalDeposited, st.TotalRewards)
	if st.TotalWithdrawn.Gt(funds) {
		err = multierr.Append(err, fmt.Errorf("withdrawn %s exceeds funds %s", st.TotalWithdrawn.Dec(), funds.Dec()))
		return err
	}
	funds.Sub(funds, st.TotalWithdrawn)

	if st.Liabilities.Gt(funds) {
		err = multierr.Append(err, fmt.Errorf("liabilities %s exceed funds %s", st.Liabilities.Dec(), funds.Dec()))
	}

	if !st.Dust.IsUint64() || st.Dust.Uint64() > p.dustBound {
		err = multierr.Append(err, fmt.Errorf("dust %s exceeds bound %d", st.Dust.Dec(), p.dustBound))
	}

	return err
}
