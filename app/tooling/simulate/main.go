// This program replays pool scenario files and reports their balances.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/ethpool/app/tooling/simulate/commands"
	"github.com/ardanlabs/ethpool/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("SIMULATE", "stderr")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Errorw("simulate", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	log.Infow("simulate", "version", build)

	return processCommands(os.Args, log)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string, log *zap.SugaredLogger) error {
	if len(args) < 3 {
		return errors.New("usage: simulate run|list <file or folder>")
	}

	switch args[1] {
	case "run":
		if err := commands.Run(os.Stdout, log, args[2]); err != nil {
			return fmt.Errorf("running scenarios: %w", err)
		}

	case "list":
		if err := commands.List(os.Stdout, args[2]); err != nil {
			return fmt.Errorf("listing scenarios: %w", err)
		}

	default:
		return fmt.Errorf("unknown command %q", args[1])
	}

	return nil
}
