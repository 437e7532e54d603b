// Package state is the core API for the pool node. It validates signed
// instructions from wallets and applies them to the pool accounting.
package state

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ardanlabs/ethpool/foundation/ether"
	"github.com/ardanlabs/ethpool/foundation/genesis"
	"github.com/ardanlabs/ethpool/foundation/pool"
)

// Set of errors for instructions the node refuses to apply.
var (
	ErrSignature = errors.New("invalid signature")
	ErrChainID   = errors.New("wrong chain id")
	ErrNonce     = errors.New("nonce already used")
	ErrNotTeam   = errors.New("only the team account can deposit rewards")
)

// EventHandler defines a function that is called when events
// occur in the processing of instructions.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start the node state.
type Config struct {
	Genesis   genesis.Genesis
	EvHandler EventHandler
}

// State manages the pool and the instructions applied to it.
type State struct {
	genesis   genesis.Genesis
	team      pool.AccountID
	evHandler EventHandler

	pool   *pool.Pool
	nonces map[pool.AccountID]uint64
	mu     sync.Mutex
}

// New constructs the node state and applies the genesis deposits.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	team, err := pool.ToAccountID(cfg.Genesis.Team)
	if err != nil {
		return nil, fmt.Errorf("genesis team account: %w", err)
	}

	p := pool.New()
	if err := applyGenesis(p, cfg.Genesis); err != nil {
		return nil, err
	}

	state := State{
		genesis:   cfg.Genesis,
		team:      team,
		evHandler: ev,
		pool:      p,
		nonces:    make(map[pool.AccountID]uint64),
	}

	return &state, nil
}

// Reset puts the pool back to its genesis state and forgets every nonce.
func (s *State) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pool.Reset()
	if err := applyGenesis(s.pool, s.genesis); err != nil {
		return err
	}
	s.nonces = make(map[pool.AccountID]uint64)

	s.evHandler("state: Reset: pool back to genesis")

	return nil
}

// Team returns the account allowed to deposit rewards.
func (s *State) Team() pool.AccountID {
	return s.team
}

// =============================================================================

// applyGenesis deposits the genesis balances into the pool. Accounts are
// applied in order so the journal is the same on every start.
func applyGenesis(p *pool.Pool, gen genesis.Genesis) error {
	accounts := make([]string, 0, len(gen.Deposits))
	for account := range gen.Deposits {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)

	for _, account := range accounts {
		value := gen.Deposits[account]

		accountID, err := pool.ToAccountID(account)
		if err != nil {
			return fmt.Errorf("genesis deposit %q: %w", account, err)
		}

		amount, err := ether.Parse(value)
		if err != nil {
			return fmt.Errorf("genesis deposit %q: %w", account, err)
		}

		if err := p.Deposit(accountID, amount); err != nil {
			return fmt.Errorf("genesis deposit %q: %w", account, err)
		}
	}

	return nil
}
