// Command ctv builds CTV covenant addresses, spending transactions and vaults.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goodnatureofminers/covenant7000/internal/covenant/repository/bolt"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/service"
	"github.com/goodnatureofminers/covenant7000/internal/metrics"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type globalOptions struct {
	Verbose bool   `short:"v" long:"verbose" env:"CTV_VERBOSE" description:"log at debug level"`
	Archive string `long:"archive" env:"CTV_ARCHIVE" description:"bbolt file to archive built transactions in"`
}

// app is the state shared by every command.
type app struct {
	ctx     context.Context
	logger  *zap.Logger
	svc     *service.CovenantService
	out     io.Writer
	closers []func() error
}

func newApp(ctx context.Context, opts *globalOptions) (*app, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	if !opts.Verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("can't initialize zap logger: %w", err)
	}

	a := &app{ctx: ctx, logger: logger, out: os.Stdout}
	var archive service.ArchiveRepository
	if opts.Archive != "" {
		store, err := bolt.Open(opts.Archive, metrics.NewArchiveRepository("bolt"))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		archive = store
	}
	a.svc = service.NewCovenantService(logger, metrics.NewCovenantBuilder(), archive)
	return a, nil
}

func (a *app) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Error("close", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts globalOptions
	parser := flags.NewParser(&opts, flags.Default)
	run := func(cmd command) flags.Commander {
		return &runner{ctx: ctx, opts: &opts, cmd: cmd}
	}

	mustAdd(parser.AddCommand("address", "Resolve a covenant address",
		"Reads a covenant document and prints its address, commitment and locking script.", run(&addressCommand{})))
	mustAdd(parser.AddCommand("hash", "Compute a template hash",
		"Prints the template hash of a covenant document or of a raw transaction.", run(&hashCommand{})))
	mustAdd(parser.AddCommand("spend", "Build spending transactions",
		"Builds the transactions that spend a funded covenant through its tree.", run(&spendCommand{})))
	mustAdd(parser.AddCommand("vault", "Build vaults",
		"Builds one vault per document together with its vault, unvault, cold and hot transactions.", run(&vaultCommand{})))
	mustAdd(parser.AddCommand("describe", "Describe a raw transaction",
		"Decodes a raw transaction the way decoderawtransaction does.", run(&describeCommand{})))
	mustAdd(parser.AddCommand("archive", "Show an archived plan",
		"Prints the archived transactions of a plan. Requires --archive.", run(&archiveCommand{})))

	if _, err := parser.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}

func mustAdd(_ *flags.Command, err error) {
	if err != nil {
		panic("register command: " + err.Error())
	}
}
