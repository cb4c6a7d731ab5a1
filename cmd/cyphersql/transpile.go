package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rlch/cyphersql"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var errNoQuery = errors.New("no query provided")

func transpileCommand() *cli.Command {
	return &cli.Command{
		Name:      "transpile",
		Aliases:   []string{"t"},
		Usage:     "Translate a Cypher query to SQL statements",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a config file (default: search upward for .cyphersql.yaml)",
			},
			&cli.StringFlag{
				Name:  "node-table",
				Usage: "table holding nodes",
			},
			&cli.StringFlag{
				Name:  "relationship-table",
				Usage: "table holding relationships",
			},
			&cli.BoolFlag{
				Name:  "label-tables",
				Usage: "use one table per node label instead of a shared node table",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log translation stages",
			},
		},
		Action: runTranspile,
	}
}

func runTranspile(_ context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd.Bool("verbose"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	query, err := readQuery(cmd)
	if err != nil {
		return err
	}

	schema, err := resolveSchema(cmd)
	if err != nil {
		return err
	}

	logger.Debug("transpiling query",
		zap.String("query", query),
		zap.String("node_table", schema.NodeTable),
		zap.String("relationship_table", schema.RelationshipTable),
		zap.Bool("use_label_tables", schema.UseLabelTables),
	)

	statements, err := cyphersql.Transpile(query, schema)
	if err != nil {
		return err
	}

	logger.Debug("transpiled", zap.Int("statements", len(statements)))

	st := newStyles()

	for i, sql := range statements {
		if i > 0 {
			fmt.Println(st.Dim.Render(";"))
		}

		fmt.Println(sql)
	}

	return nil
}

// readQuery takes the query from the first argument, or from stdin when no
// argument is given.
func readQuery(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() > 0 {
		query := cmd.Args().First()
		if query == "" {
			return "", errNoQuery
		}

		return query, nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}

	query := strings.TrimSpace(string(data))
	if query == "" {
		return "", errNoQuery
	}

	return query, nil
}

// resolveSchema layers flag overrides on top of the config file, which in
// turn layers on top of the built-in defaults.
func resolveSchema(cmd *cli.Command) (cyphersql.SchemaConfig, error) {
	cfg := cyphersql.DefaultConfig()

	if path := cmd.String("config"); path != "" {
		loaded, err := cyphersql.LoadConfigFile(path)
		if err != nil {
			return cyphersql.SchemaConfig{}, err
		}

		cfg = loaded
	} else {
		loaded, err := cyphersql.LoadConfig(".")

		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, cyphersql.ErrConfigNotFound):
			// Defaults apply.
		default:
			return cyphersql.SchemaConfig{}, err
		}
	}

	schema := cfg.Schema

	if cmd.IsSet("node-table") {
		schema.NodeTable = cmd.String("node-table")
	}

	if cmd.IsSet("relationship-table") {
		schema.RelationshipTable = cmd.String("relationship-table")
	}

	if cmd.IsSet("label-tables") {
		schema.UseLabelTables = cmd.Bool("label-tables")
	}

	return schema, nil
}

// newLogger returns a development logger in verbose mode, otherwise a nop.
func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}

	return zap.NewDevelopment()
}
