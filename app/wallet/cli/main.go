package main

import "github.com/ardanlabs/ethpool/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
