// Package signature signs pool instructions with an account's secp256k1 key
// and recovers the pool account behind a signature. Signatures carry a pool
// specific recovery id so a wallet signature can't be replayed on Ethereum.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ZeroHash is returned by Hash when the value can't be encoded.
const ZeroHash string = "0x0000000000000000000000000000000000000000000000000000000000000000"

// poolID offsets the recovery id carried in V. Ethereum uses 27.
const poolID = 29

// poolPrefix is hashed in front of every signed digest.
var poolPrefix = []byte("\x19ETHPool Signed Message:\n32")

// =============================================================================

// Hash returns the hex encoded sha256 of the value's JSON encoding.
func Hash(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return ZeroHash
	}

	hash := sha256.Sum256(data)
	return hexutil.Encode(hash[:])
}

// Sign signs the stamped value with the account's key and returns the
// V, R and S values a wallet sends with an instruction.
func Sign(value any, privateKey *ecdsa.PrivateKey) (v, r, s *big.Int, err error) {
	data, err := stamp(value)
	if err != nil {
		return nil, nil, nil, err
	}

	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return nil, nil, nil, err
	}

	// The node recovers the account from the signature, check that works.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return nil, nil, nil, err
	}

	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, rs) {
		return nil, nil, nil, errors.New("invalid signature")
	}

	v, r, s = toSignatureValues(sig)

	return v, r, s, nil
}

// VerifySignature rejects signature values the node can't recover an
// account from: a recovery id outside the pool range or R and S outside
// the curve order.
func VerifySignature(v, r, s *big.Int) error {
	if v == nil || r == nil || s == nil {
		return errors.New("missing signature values")
	}

	if !v.IsUint64() {
		return errors.New("invalid recovery id")
	}

	recID := v.Uint64() - poolID
	if recID != 0 && recID != 1 {
		return errors.New("invalid recovery id")
	}

	if !crypto.ValidateSignatureValues(byte(recID), r, s, false) {
		return errors.New("invalid signature values")
	}

	return nil
}

// FromAddress recovers the address of the account that signed the value.
func FromAddress(value any, v, r, s *big.Int) (string, error) {

	// Any change to the value recovers a different, valid looking account.
	// The nonce and balance checks of the node are what catch that.

	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	sig := ToSignatureBytes(v, r, s)

	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return "", fmt.Errorf("recovering public key: %w", err)
	}

	return crypto.PubkeyToAddress(*publicKey).String(), nil
}

// SignatureString encodes the signature as 65 hex bytes with the pool
// recovery id, the form written to the node's event log.
func SignatureString(v, r, s *big.Int) string {
	return hexutil.Encode(ToSignatureBytesWithPoolID(v, r, s))
}

// ToVRSFromHexSignature is the reverse of SignatureString.
func ToVRSFromHexSignature(sigStr string) (v, r, s *big.Int, err error) {
	sig, err := hexutil.Decode(sigStr)
	if err != nil {
		return nil, nil, nil, err
	}

	if len(sig) != crypto.SignatureLength {
		return nil, nil, nil, fmt.Errorf("signature length %d, exp %d", len(sig), crypto.SignatureLength)
	}

	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).SetBytes([]byte{sig[64]})

	return v, r, s, nil
}

// ToSignatureBytes packs R, S and V into the 65 byte form go-ethereum
// recovers keys from, with V back in the 0 or 1 range.
func ToSignatureBytes(v, r, s *big.Int) []byte {
	sig := make([]byte, crypto.SignatureLength)

	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:64])
	sig[64] = byte(v.Uint64() - poolID)

	return sig
}

// ToSignatureBytesWithPoolID packs the signature keeping the pool offset in V.
func ToSignatureBytesWithPoolID(v, r, s *big.Int) []byte {
	sig := ToSignatureBytes(v, r, s)
	sig[64] = byte(v.Uint64())

	return sig
}

// =============================================================================

// stamp hashes the value behind the pool prefix. Signing the same JSON
// outside the pool produces a different digest.
func stamp(value any) ([]byte, error) {
	v, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	digest := crypto.Keccak256(v)

	return crypto.Keccak256(poolPrefix, digest), nil
}

// toSignatureValues splits a go-ethereum signature into V, R and S with
// the pool offset applied to V.
func toSignatureValues(sig []byte) (v, r, s *big.Int) {
	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).SetBytes([]byte{sig[64] + poolID})

	return v, r, s
}
