// Package main is the idadmin console entry point.
package main

import (
	"fmt"
	"os"

	"idservices-admin/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
