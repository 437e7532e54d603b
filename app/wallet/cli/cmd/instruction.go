package cmd

import (
	"context"
	"fmt"

	"github.com/ardanlabs/ethpool/foundation/ether"
	"github.com/ardanlabs/ethpool/foundation/pool"
	"github.com/ardanlabs/ethpool/foundation/state"
	"github.com/spf13/cobra"
)

var (
	value      string
	chainID    uint16
	nonceValue uint64
)

func init() {
	for _, kind := range []state.Kind{state.KindDeposit, state.KindWithdraw, state.KindRewards} {
		cmd := newInstructionCmd(kind)
		cmd.Flags().StringVarP(&value, "value", "v", "", "Value in ether, for example 1.5.")
		cmd.Flags().Uint16VarP(&chainID, "chain", "c", 1, "Chain id of the pool.")
		cmd.Flags().Uint64VarP(&nonceValue, "nonce", "n", 0, "Nonce to use, the next one when zero.")
		cmd.MarkFlagRequired("value")

		rootCmd.AddCommand(cmd)
	}
}

func newInstructionCmd(kind state.Kind) *cobra.Command {
	short := map[state.Kind]string{
		state.KindDeposit:  "Deposit ether into the pool",
		state.KindWithdraw: "Withdraw ether from the pool",
		state.KindRewards:  "Deposit rewards as the team",
	}

	return &cobra.Command{
		Use:   string(kind),
		Short: short[kind],
		RunE: func(cmd *cobra.Command, args []string) error {
			return instructionRun(cmd, kind)
		},
	}
}

func instructionRun(cmd *cobra.Command, kind state.Kind) error {
	privateKey, err := loadPrivateKey()
	if err != nil {
		return err
	}

	amount, err := ether.Parse(value)
	if err != nil {
		return err
	}

	ctx := context.Background()
	clt := newClient(url)

	n := nonceValue
	if n == 0 {
		last, err := clt.nonce(ctx, pool.PublicKeyToAccountID(privateKey.PublicKey))
		if err != nil {
			return err
		}
		n = last + 1
	}

	in, err := state.NewInstruction(chainID, n, kind, amount)
	if err != nil {
		return err
	}

	si, err := in.Sign(privateKey)
	if err != nil {
		return err
	}

	rcpt, err := clt.submit(ctx, si)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s ETH for %s (nonce %d)\nbalance %s ETH\n",
		rcpt.Kind, rcpt.Amount.Ether, rcpt.Account, rcpt.Nonce, rcpt.Balance.Ether)

	return nil
}
