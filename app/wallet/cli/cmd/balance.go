package cmd

import (
	"context"
	"fmt"

	"github.com/ardanlabs/ethpool/foundation/pool"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the balance of the wallet in the pool",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) error {
	privateKey, err := loadPrivateKey()
	if err != nil {
		return err
	}

	accountID := pool.PublicKeyToAccountID(privateKey.PublicKey)

	bal, err := newClient(url).balance(context.Background(), accountID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "For Account: %s\n%s ETH\n", accountID, bal.Balance.Ether)

	return nil
}
