package main

import (
	"context"
	"fmt"

	"github.com/rlch/cyphersql"
	"github.com/urfave/cli/v3"
)

func printCommand() *cli.Command {
	return &cli.Command{
		Name:      "print",
		Aliases:   []string{"p"},
		Usage:     "Parse a query and print its canonical form",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dialect",
				Aliases: []string{"d"},
				Usage:   "dialect to parse with",
				Value:   "cypher",
			},
		},
		Action: runPrint,
	}
}

func runPrint(_ context.Context, cmd *cli.Command) error {
	query, err := readQuery(cmd)
	if err != nil {
		return err
	}

	dialect, err := cyphersql.NewDialect(cmd.String("dialect"))
	if err != nil {
		return err
	}

	stmt, err := cyphersql.Parse(dialect, query)
	if err != nil {
		return err
	}

	fmt.Println(stmt)

	return nil
}

func dialectsCommand() *cli.Command {
	return &cli.Command{
		Name:  "dialects",
		Usage: "List registered dialects",
		Action: func(_ context.Context, _ *cli.Command) error {
			st := newStyles()

			for _, name := range cyphersql.RegisteredDialects() {
				fmt.Println(st.Accent.Render(name))
			}

			return nil
		},
	}
}
