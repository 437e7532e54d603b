package state

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ardanlabs/ethpool/foundation/pool"
	"github.com/ardanlabs/ethpool/foundation/signature"
	"github.com/holiman/uint256"
)

// Kind represents what an instruction asks the pool to do.
type Kind string

// Set of instruction kinds the pool accepts.
const (
	KindDeposit  Kind = "deposit"
	KindWithdraw Kind = "withdraw"
	KindRewards  Kind = "rewards"
)

// ParseKind validates the string is a known instruction kind.
func ParseKind(kind string) (Kind, error) {
	switch k := Kind(kind); k {
	case KindDeposit, KindWithdraw, KindRewards:
		return k, nil
	}

	return "", fmt.Errorf("unknown instruction kind %q", kind)
}

// =============================================================================

// Instruction is what a wallet asks the pool to perform on behalf of the
// account that signs it.
type Instruction struct {
	ChainID uint16 `json:"chain_id"` // Pool the instruction is meant for.
	Nonce   uint64 `json:"nonce"`    // Must be larger than the account's last nonce.
	Kind    Kind   `json:"kind"`     // What to perform.
	Value   string `json:"value"`    // Amount in wei as a decimal string.
}

// NewInstruction constructs a new instruction.
func NewInstruction(chainID uint16, nonce uint64, kind Kind, value *uint256.Int) (Instruction, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Instruction{}, err
	}

	if value == nil || value.IsZero() {
		return Instruction{}, fmt.Errorf("value must be greater than zero: %w", pool.ErrInvalidAmount)
	}

	in := Instruction{
		ChainID: chainID,
		Nonce:   nonce,
		Kind:    kind,
		Value:   value.Dec(),
	}

	return in, nil
}

// Amount returns the value of the instruction in wei.
func (in Instruction) Amount() (*uint256.Int, error) {
	amount, err := uint256.FromDecimal(in.Value)
	if err != nil {
		return nil, fmt.Errorf("value %q: %w", in.Value, pool.ErrInvalidAmount)
	}

	return amount, nil
}

// Sign uses the specified private key to sign the instruction.
func (in Instruction) Sign(privateKey *ecdsa.PrivateKey) (SignedInstruction, error) {
	v, r, s, err := signature.Sign(in, privateKey)
	if err != nil {
		return SignedInstruction{}, err
	}

	si := SignedInstruction{
		Instruction: in,
		V:           v,
		R:           r,
		S:           s,
	}

	return si, nil
}

// =============================================================================

// SignedInstruction is a signed version of the instruction. This is how
// wallets provide instructions to the node.
type SignedInstruction struct {
	Instruction
	V *big.Int `json:"v"` // Recovery identifier, either 29 or 30.
	R *big.Int `json:"r"` // First coordinate of the ECDSA signature.
	S *big.Int `json:"s"` // Second coordinate of the ECDSA signature.
}

// Validate verifies the instruction has a proper signature that conforms to
// our standards and that its contents are well formed.
func (si SignedInstruction) Validate() error {
	if _, err := ParseKind(string(si.Kind)); err != nil {
		return err
	}

	amount, err := si.Amount()
	if err != nil {
		return err
	}

	if amount.IsZero() {
		return fmt.Errorf("value must be greater than zero: %w", pool.ErrInvalidAmount)
	}

	if err := signature.VerifySignature(si.V, si.R, si.S); err != nil {
		return errors.Join(ErrSignature, err)
	}

	return nil
}

// FromAccount extracts the account that signed the instruction.
func (si SignedInstruction) FromAccount() (pool.AccountID, error) {
	address, err := signature.FromAddress(si.Instruction, si.V, si.R, si.S)
	if err != nil {
		return "", errors.Join(ErrSignature, err)
	}

	return pool.AccountID(address), nil
}

// SignatureString returns the signature as a string.
func (si SignedInstruction) SignatureString() string {
	return signature.SignatureString(si.V, si.R, si.S)
}

// String implements the fmt.Stringer interface for logging.
func (si SignedInstruction) String() string {
	from, err := si.FromAccount()
	if err != nil {
		from = "unknown"
	}

	return fmt.Sprintf("%s:%d", from, si.Nonce)
}
