package poolgrp

import (
	"math/big"

	"github.com/ardanlabs/ethpool/business/sys/validate"
	"github.com/ardanlabs/ethpool/foundation/ether"
	"github.com/ardanlabs/ethpool/foundation/pool"
	"github.com/ardanlabs/ethpool/foundation/state"
	"github.com/holiman/uint256"
)

// amount carries a value in both wei and ether so clients can pick either.
type amount struct {
	Wei   string `json:"wei"`
	Ether string `json:"ether"`
}

func toAmount(wei *uint256.Int) amount {
	if wei == nil {
		wei = new(uint256.Int)
	}

	return amount{
		Wei:   wei.Dec(),
		Ether: ether.Format(wei),
	}
}

// =============================================================================

type instruction struct {
	ChainID uint16   `json:"chain_id" validate:"required"`
	Nonce   uint64   `json:"nonce"`
	Kind    string   `json:"kind" validate:"required,oneof=deposit withdraw rewards"`
	Value   string   `json:"value" validate:"required,number"`
	V       *big.Int `json:"v" validate:"required"`
	R       *big.Int `json:"r" validate:"required"`
	S       *big.Int `json:"s" validate:"required"`
}

// Validate checks the instruction is well formed. Web.Decode calls it.
func (in instruction) Validate() error {
	return validate.Check(in)
}

func (in instruction) toSignedInstruction() state.SignedInstruction {
	return state.SignedInstruction{
		Instruction: state.Instruction{
			ChainID: in.ChainID,
			Nonce:   in.Nonce,
			Kind:    state.Kind(in.Kind),
			Value:   in.Value,
		},
		V: in.V,
		R: in.R,
		S: in.S,
	}
}

// preview asks what an instruction would do without signing it. Values are
// in ether like the wallet accepts them.
type preview struct {
	Account string `json:"account" validate:"required,account"`
	Kind    string `json:"kind" validate:"required,oneof=deposit withdraw rewards"`
	Value   string `json:"value" validate:"required,ether"`
}

// Validate checks the preview is well formed. Web.Decode calls it.
func (p preview) Validate() error {
	return validate.Check(p)
}

type receipt struct {
	Account pool.AccountID `json:"account"`
	Name    string         `json:"name"`
	Kind    state.Kind     `json:"kind"`
	Nonce   uint64         `json:"nonce"`
	Amount  amount         `json:"amount"`
	Balance amount         `json:"balance"`
}

// =============================================================================

type balance struct {
	Account pool.AccountID `json:"account"`
	Name    string         `json:"name"`
	Balance amount         `json:"balance"`
}

type nonce struct {
	Account pool.AccountID `json:"account"`
	Nonce   uint64         `json:"nonce"`
}

type account struct {
	Account  pool.AccountID `json:"account"`
	Name     string         `json:"name"`
	Nonce    uint64         `json:"nonce"`
	Balance  amount         `json:"balance"`
	Rounding uint64         `json:"rounding_wei"`
}

func toAccount(acct pool.Account, name string, nonce uint64) account {
	return account{
		Account:  acct.AccountID,
		Name:     name,
		Nonce:    nonce,
		Balance:  toAmount(acct.Principal),
		Rounding: acct.Rounding,
	}
}

type stats struct {
	Team           pool.AccountID `json:"team"`
	TeamName       string         `json:"team_name"`
	Accounts       int            `json:"accounts"`
	Injections     uint64         `json:"injections"`
	TotalPrincipal amount         `json:"total_principal"`
	TotalDeposited amount         `json:"total_deposited"`
	TotalWithdrawn amount         `json:"total_withdrawn"`
	TotalRewards   amount         `json:"total_rewards"`
	Liabilities    amount         `json:"liabilities"`
	Dust           amount         `json:"dust"`
	Accumulator    string         `json:"accumulator"`
}

func toStats(s pool.Stats) stats {
	return stats{
		Accounts:       s.Accounts,
		Injections:     s.Injections,
		TotalPrincipal: toAmount(s.TotalPrincipal),
		TotalDeposited: toAmount(s.TotalDeposited),
		TotalWithdrawn: toAmount(s.TotalWithdrawn),
		TotalRewards:   toAmount(s.TotalRewards),
		Liabilities:    toAmount(s.Liabilities),
		Dust:           toAmount(s.Dust),
		Accumulator:    s.Accumulator.Dec(),
	}
}

type op struct {
	Kind    pool.OpKind    `json:"kind"`
	Account pool.AccountID `json:"account,omitempty"`
	Amount  amount         `json:"amount"`
}
