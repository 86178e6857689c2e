// Package main provides the portugo CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/portugo/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
