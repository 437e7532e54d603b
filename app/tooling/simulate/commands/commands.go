// Package commands contains the functionality for the simulate tool.
package commands

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ardanlabs/ethpool/foundation/ether"
	"github.com/ardanlabs/ethpool/foundation/scenario"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Run replays every scenario at the path and prints the final balances.
// All scenarios run even when one fails, the failures are returned together.
func Run(w io.Writer, log *zap.SugaredLogger, path string) error {
	scs, err := load(path)
	if err != nil {
		return err
	}

	var errs error
	for _, sc := range scs {
		res, err := scenario.Run(sc)
		switch {
		case err != nil:
			log.Errorw("scenario", "name", sc.Name, "status", "failed", "ERROR", err)
			fmt.Fprintf(w, "FAIL  %s: %s\n", sc.Name, err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", sc.Name, err))
			continue

		case res.Skipped:
			log.Infow("scenario", "name", sc.Name, "status", "skipped", "reason", res.Reason)
			fmt.Fprintf(w, "SKIP  %s: %s\n", sc.Name, res.Reason)
			continue
		}

		log.Infow("scenario", "name", sc.Name, "status", "passed", "steps", res.Steps)
		fmt.Fprintf(w, "PASS  %s (%d steps, %d days)\n", sc.Name, res.Steps, res.Days)

		accounts := make([]string, 0, len(res.Balances))
		for account := range res.Balances {
			accounts = append(accounts, account)
		}
		sort.Strings(accounts)

		for _, account := range accounts {
			fmt.Fprintf(w, "      %-10s %s ETH\n", account, res.Balances[account])
		}
		fmt.Fprintf(w, "      %-10s %s wei\n", "dust", res.Stats.Dust.Dec())
		fmt.Fprintf(w, "      %-10s %s ETH\n", "rewards", ether.Format(res.Stats.TotalRewards))
	}

	return errs
}

// List prints the name and description of every scenario at the path.
func List(w io.Writer, path string) error {
	scs, err := load(path)
	if err != nil {
		return err
	}

	for _, sc := range scs {
		status := ""
		if sc.Unsupported {
			status = " (unsupported)"
		}
		fmt.Fprintf(w, "%s%s: %s\n", sc.Name, status, sc.Description)
	}

	return nil
}

func load(path string) ([]scenario.Scenario, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return scenario.LoadDir(path)
	}

	sc, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}

	return []scenario.Scenario{sc}, nil
}
