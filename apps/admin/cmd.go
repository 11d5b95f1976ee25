package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/apps"
	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/document"
	"github.com/oinstituto/atlas/core/entry"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf     *core.Config
	logger   core.Logger
	db       *sql.DB // nil unless the engine is postgres
	entries  *entry.Service
	ingester *document.Ingester
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]     - run a goose migration command (up, down, status, redo, ...)")
	_, _ = fmt.Fprintln(cli.out, "  simulate -count N          - insert N mock entries")
	_, _ = fmt.Fprintln(cli.out, "  simulate -every DURATION   - insert a mock entry every DURATION until interrupted")
	_, _ = fmt.Fprintln(cli.out, "  reset                      - delete every entry")
	_, _ = fmt.Fprintln(cli.out, "  ingest -dir DIR            - load the knowledge documents of DIR")
	_, _ = fmt.Fprintln(cli.out, "  export -out FILE.xlsx      - export the entries to a spreadsheet")
	_, _ = fmt.Fprintln(cli.out, "  token [-ttl DURATION]      - sign an admin token for the admin API")
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse maps -h to errHelp.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return apps.NewArgumentError(err.Error())
	}
	return nil
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	simulateCmd := cli.flagSet("simulate")
	simulateCount := simulateCmd.Int("count", 0, "Number of mock entries to insert.")
	simulateEvery := simulateCmd.Duration("every", 0, "Insert a mock entry at this interval until interrupted.")

	ingestCmd := cli.flagSet("ingest")
	ingestDir := ingestCmd.String("dir", "", "Directory of the knowledge documents (*.json).")

	exportCmd := cli.flagSet("export")
	exportOut := exportCmd.String("out", "", "Path of the spreadsheet to write.")

	tokenCmd := cli.flagSet("token")
	tokenTTL := tokenCmd.Duration("ttl", cli.conf.Server.AdminTokenTTL, "Validity of the token.")
	tokenSubject := tokenCmd.String("subject", "admin", "Subject of the token.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "simulate":
		if err := parse(simulateCmd, args[2:]); err != nil {
			return err
		}
		switch {
		case *simulateCount > 0 && *simulateEvery > 0:
			return apps.NewArgumentError("-count and -every are mutually exclusive")
		case *simulateCount > 0:
			return cli.simulate(ctx, *simulateCount)
		case *simulateEvery > 0:
			return cli.simulateEvery(ctx, *simulateEvery)
		default:
			simulateCmd.Usage()
			return errHelp
		}

	case "reset":
		return cli.reset(ctx)

	case "ingest":
		if err := parse(ingestCmd, args[2:]); err != nil {
			return err
		}
		if *ingestDir == "" {
			ingestCmd.Usage()
			return errHelp
		}
		return cli.ingest(ctx, *ingestDir)

	case "export":
		if err := parse(exportCmd, args[2:]); err != nil {
			return err
		}
		if *exportOut == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.export(ctx, *exportOut)

	case "token":
		if err := parse(tokenCmd, args[2:]); err != nil {
			return err
		}
		if *tokenTTL <= 0 {
			return apps.NewArgumentError(fmt.Sprintf("invalid -ttl %s", *tokenTTL))
		}
		return cli.token(*tokenSubject, *tokenTTL)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) reset(ctx context.Context) error {
	n, err := cli.entries.Reset(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "%d entries deleted\n", n)
	return nil
}

func (cli *commandLine) ingest(ctx context.Context, dir string) error {
	start := time.Now()
	report, err := cli.ingester.Ingest(ctx, dir)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "%s (%s)\n", report, time.Since(start).Round(time.Millisecond))
	return nil
}
