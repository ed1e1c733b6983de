// Package main provides the entry point for the ddcquery CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/ddcquery/cmd/ddcquery/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
