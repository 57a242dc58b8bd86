// Package main provides the csvview command.
package main

import (
	"os"

	"github.com/leapstack-labs/csvview/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
