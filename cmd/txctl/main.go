package main

import (
	"fmt"
	"os"

	"txdash/internal/cli"
)

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
