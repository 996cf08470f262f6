package main

import (
	"os"

	"github.com/prr-network/prr/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
