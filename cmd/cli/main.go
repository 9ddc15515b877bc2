package main

import (
	"os"

	"github.com/devis-portal/gateway/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
