// Package main provides the cyphersql CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	app := &cli.Command{
		Name:    "cyphersql",
		Version: version,
		Usage:   "Translate Cypher graph queries to SQL",
		Commands: []*cli.Command{
			transpileCommand(),
			printCommand(),
			dialectsCommand(),
		},
	}

	err := app.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
