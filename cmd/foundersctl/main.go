package main

import (
	"fmt"
	"os"

	"foundersbook-backend/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.NewCLIApp(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
