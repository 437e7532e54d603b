package pool

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// AccountID represents the identity of a participant in the pool. The pool
// only requires it to be comparable. The node uses hex-encoded addresses
// derived from the public key that signs instructions.
type AccountID string

// ToAccountID converts a hex-encoded string to an account and validates the
// hex-encoded string is formatted correctly.
func ToAccountID(hex string) (AccountID, error) {
	a := AccountID(hex)
	if !a.IsAccountID() {
		return "", fmt.Errorf("%q is not a hex encoded address: %w", hex, ErrInvalidAccount)
	}

	return a, nil
}

// PublicKeyToAccountID converts the public key to an account value.
func PublicKeyToAccountID(pk ecdsa.PublicKey) AccountID {
	return AccountID(crypto.PubkeyToAddress(pk).String())
}

// IsAccountID verifies whether the underlying data represents a valid
// hex-encoded account.
func (a AccountID) IsAccountID() bool {
	const addressLength = 20

	if has0xPrefix(a) {
		a = a[2:]
	}

	return len(a) == 2*addressLength && isHex(a)
}

// =============================================================================

// Account represents the pool's record for an individual participant.
// Rewards settled into the account are folded into the principal, so the
// principal is also the account's weight on the reward accumulator.
type Account struct {
	AccountID AccountID

	// Principal is deposits plus settled rewards minus withdrawals.
	Principal *uint256.Int

	// Baseline is the accumulator value at the last settlement. Only
	// accumulator growth past this value is owed to the account.
	Baseline *uint256.Int

	// BaselineInjection is the injection count at the last settlement.
	BaselineInjection uint64

	// Rounding is the number of wei the settled principal may trail the
	// exact proportional value by. Each injection costs at most one wei.
	Rounding uint64
}

// newAccount constructs an empty account whose baseline is the
// current accumulator value.
func newAccount(accountID AccountID, accumulator *uint256.Int, injections uint64) Account {
	return Account{
		AccountID:         accountID,
		Principal:         new(uint256.Int),
		Baseline:          accumulator.Clone(),
		BaselineInjection: injections,
	}
}

// clone returns a deep copy of the account.
func (a Account) clone() Account {
	return Account{
		AccountID:         a.AccountID,
		Principal:         a.Principal.Clone(),
		Baseline:          a.Baseline.Clone(),
		BaselineInjection: a.BaselineInjection,
		Rounding:          a.Rounding,
	}
}

// =============================================================================

// has0xPrefix validates the account starts with a 0x.
func has0xPrefix(a AccountID) bool {
	return len(a) >= 2 && a[0] == '0' && (a[1] == 'x' || a[1] == 'X')
}

// isHex validates whether each byte is valid hexadecimal string.
func isHex(a AccountID) bool {
	if len(a)%2 != 0 {
		return false
	}

	for _, c := range []byte(a) {
		if !isHexCharacter(c) {
			return false
		}
	}

	return true
}

// isHexCharacter returns bool of c being a valid hexadecimal.
func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// =============================================================================

// byAccount provides sorting support by the account id value.
type byAccount []Account

// Len returns the number of accounts in the list.
func (ba byAccount) Len() int {
	return len(ba)
}

// Less helps to sort the list by account id in ascending order.
func (ba byAccount) Less(i, j int) bool {
	return ba[i].AccountID < ba[j].AccountID
}

// Swap moves accounts in the order of the account id value.
func (ba byAccount) Swap(i, j int) {
	ba[i], ba[j] = ba[j], ba[i]
}
