package scenario

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ethpool/foundation/ether"
	"github.com/ardanlabs/ethpool/foundation/pool"
	"github.com/holiman/uint256"
)

// errorKinds maps the error names used in scenario files to pool errors.
var errorKinds = map[string]error{
	"invalid_account":      pool.ErrInvalidAccount,
	"invalid_amount":       pool.ErrInvalidAmount,
	"insufficient_balance": pool.ErrInsufficientBalance,
	"no_depositors":        pool.ErrNoDepositors,
	"overflow":             pool.ErrOverflow,
}

// ErrExpectation is returned when a scenario doesn't end the way it says.
var ErrExpectation = errors.New("expectation failed")

// Result is the outcome of running a scenario.
type Result struct {
	Name     string
	Skipped  bool   // The scenario is unsupported and was not run.
	Reason   string // Why the scenario was skipped.
	Steps    int
	Days     int
	Balances map[string]string // Final balance in ether per account.
	Stats    pool.Stats
}

// Run replays the scenario against a fresh pool. The accounting invariants
// are checked after every step, and replaying the journal at the end must
// rebuild the same pool.
func Run(sc Scenario) (Result, error) {
	res := Result{
		Name:     sc.Name,
		Balances: make(map[string]string),
	}

	if sc.Unsupported {
		res.Skipped = true
		res.Reason = sc.Reason
		return res, nil
	}

	p := pool.New()
	accounts := make(map[string]struct{})

	for i, step := range sc.Steps {
		if err := apply(p, step, &res); err != nil {
			return res, fmt.Errorf("step %d (%s): %w", i+1, step, err)
		}

		if err := p.Verify(); err != nil {
			return res, fmt.Errorf("step %d (%s): %w", i+1, step, err)
		}

		if step.Account != "" {
			accounts[step.Account] = struct{}{}
		}
		res.Steps++
	}

	for account := range accounts {
		res.Balances[account] = ether.Format(p.TotalBalance(pool.AccountID(account)))
	}
	res.Stats = p.Stats()

	replayed, err := pool.Replay(p.Journal())
	if err != nil {
		return res, fmt.Errorf("replaying journal: %w", err)
	}

	for account := range accounts {
		accountID := pool.AccountID(account)
		if !replayed.TotalBalance(accountID).Eq(p.TotalBalance(accountID)) {
			return res, fmt.Errorf("replaying journal: balance of %s differs: %w", account, ErrExpectation)
		}
	}

	return res, nil
}

// =============================================================================

func apply(p *pool.Pool, step Step, res *Result) error {
	var amount *uint256.Int
	if step.Value != "" {
		var err error
		if amount, err = ether.Parse(step.Value); err != nil {
			err = fmt.Errorf("value %q: %v: %w", step.Value, err, pool.ErrInvalidAmount)
			if step.Op == OpExpect {
				return err
			}
			return match(step, err)
		}
	}

	accountID := pool.AccountID(step.Account)

	var err error
	switch step.Op {
	case OpAdvance:
		res.Days += step.Days
		return nil

	case OpExpect:
		return expect(p.TotalBalance(accountID), amount, step)

	case OpDeposit:
		err = p.Deposit(accountID, amount)

	case OpWithdraw:
		_, err = p.Withdraw(accountID, amount)

	case OpRewards:
		err = p.DepositRewards(amount)
	}

	return match(step, err)
}

// match compares the outcome of a step with the error the step expects.
func match(step Step, err error) error {
	switch {
	case step.Error == "":
		return err

	case err == nil:
		return fmt.Errorf("got no error, exp %s: %w", step.Error, ErrExpectation)

	case !errors.Is(err, errorKinds[step.Error]):
		return fmt.Errorf("got %v, exp %s: %w", err, step.Error, ErrExpectation)
	}

	return nil
}

func expect(got *uint256.Int, exp *uint256.Int, step Step) error {
	diff := new(uint256.Int)
	if got.Gt(exp) {
		diff.Sub(got, exp)
	} else {
		diff.Sub(exp, got)
	}

	if diff.GtUint64(step.Tolerance) {
		return fmt.Errorf("balance of %s is %s, exp %s: %w", step.Account, ether.Format(got), step.Value, ErrExpectation)
	}

	return nil
}
