package state

import (
	"github.com/ardanlabs/ethpool/foundation/genesis"
	"github.com/ardanlabs/ethpool/foundation/pool"
	"github.com/holiman/uint256"
)

// QueryBalance returns the total balance for the specified account.
func (s *State) QueryBalance(account pool.AccountID) *uint256.Int {
	return s.pool.TotalBalance(account)
}

// QueryAccount returns the settled account information.
func (s *State) QueryAccount(account pool.AccountID) (pool.Account, error) {
	return s.pool.Account(account)
}

// QueryNonce returns the last nonce the account used.
func (s *State) QueryNonce(account pool.AccountID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.nonces[account]
}

// RetrieveAccounts returns a copy of every account in the pool.
func (s *State) RetrieveAccounts() []pool.Account {
	return s.pool.Accounts()
}

// RetrieveStats returns the pool totals.
func (s *State) RetrieveStats() pool.Stats {
	return s.pool.Stats()
}

// RetrieveJournal returns the operations applied to the pool.
func (s *State) RetrieveJournal() []pool.Op {
	return s.pool.Journal()
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// Verify checks the pool accounting invariants.
func (s *State) Verify() error {
	return s.pool.Verify()
}
