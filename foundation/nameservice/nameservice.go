// Package nameservice reads a folder of account key files and resolves pool
// accounts to the names of those files.
package nameservice

import (
	"fmt"
	"io/fs"
	"maps"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/ethpool/foundation/pool"
	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maintains a map of accounts for name lookup.
type NameService struct {
	names    map[pool.AccountID]string
	accounts map[string]pool.AccountID
}

// New walks the root folder and registers every .ecdsa key file under the
// file's base name.
func New(root string) (*NameService, error) {
	ns := NameService{
		names:    make(map[pool.AccountID]string),
		accounts: make(map[string]pool.AccountID),
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || filepath.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		accountID := pool.PublicKeyToAccountID(privateKey.PublicKey)
		name := strings.TrimSuffix(filepath.Base(fileName), ".ecdsa")

		ns.names[accountID] = name
		ns.accounts[name] = accountID

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified account, or the account itself
// when it has no name.
func (ns *NameService) Lookup(accountID pool.AccountID) string {
	name, exists := ns.names[accountID]
	if !exists {
		return string(accountID)
	}
	return name
}

// Resolve accepts either a registered name or an account id and returns
// the account id.
func (ns *NameService) Resolve(nameOrAccount string) (pool.AccountID, error) {
	if accountID, exists := ns.accounts[nameOrAccount]; exists {
		return accountID, nil
	}

	return pool.ToAccountID(nameOrAccount)
}

// Copy returns a copy of the map of accounts and names.
func (ns *NameService) Copy() map[pool.AccountID]string {
	return maps.Clone(ns.names)
}
