package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/goodnatureofminers/covenant7000/internal/covenant/bitcoin"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/model"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/service"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/specfile"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/template"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/tree"
	"github.com/goodnatureofminers/covenant7000/internal/covenant/vault"
)

type command interface {
	run(a *app, args []string) error
}

// runner adapts a command to go-flags, building the shared app once global
// options are parsed.
type runner struct {
	ctx  context.Context
	opts *globalOptions
	cmd  command
}

func (r *runner) Execute(args []string) error {
	a, err := newApp(r.ctx, r.opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return r.cmd.run(a, args)
}

type addressCommand struct {
	Spec string `short:"s" long:"spec" default:"-" description:"covenant document (yaml or json); - reads stdin"`
}

func (c *addressCommand) run(a *app, _ []string) error {
	spec, err := specfile.Load(c.Spec)
	if err != nil {
		return err
	}
	res, err := a.svc.ResolveAddress(a.ctx, spec)
	if err != nil {
		return err
	}
	return a.print(res)
}

type hashCommand struct {
	Spec  string `short:"s" long:"spec" description:"covenant document (yaml or json); - reads stdin"`
	Tx    string `long:"tx" description:"raw transaction hex"`
	Input uint32 `long:"input" description:"input index the hash commits to, with --tx"`
}

func (c *hashCommand) run(a *app, _ []string) error {
	switch {
	case c.Spec != "" && c.Tx != "":
		return errors.New("--spec and --tx are mutually exclusive")
	case c.Tx != "":
		tx, err := bitcoin.DecodeTransaction(c.Tx)
		if err != nil {
			return err
		}
		commitment, err := template.Hash(tx, c.Input)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.out, commitment)
		return err
	case c.Spec != "":
		spec, err := specfile.Load(c.Spec)
		if err != nil {
			return err
		}
		node, err := tree.Resolve(spec)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.out, node.Commitment)
		return err
	default:
		return errors.New("one of --spec or --tx is required")
	}
}

type spendCommand struct {
	Spec    string `short:"s" long:"spec" default:"-" description:"covenant document (yaml or json); - reads stdin"`
	Funding string `short:"f" long:"funding" required:"true" description:"funding outpoint as txid:vout"`
	FanOut  bool   `long:"fan-out" description:"spend every nested covenant, not only the first-output chain"`
	Raw     bool   `long:"raw" description:"print raw transaction hex only, one per line"`
}

func (c *spendCommand) run(a *app, _ []string) error {
	spec, err := specfile.Load(c.Spec)
	if err != nil {
		return err
	}
	funding, err := bitcoin.ParseOutPoint(c.Funding)
	if err != nil {
		return err
	}
	plan, err := a.svc.BuildSpends(a.ctx, spec, funding, c.FanOut)
	if err != nil {
		return err
	}
	if c.Raw {
		for _, tx := range plan.Transactions {
			if _, err := fmt.Fprintln(a.out, tx.Hex); err != nil {
				return err
			}
		}
		return nil
	}
	return a.print(plan)
}

type vaultCommand struct {
	Funding    []string `short:"f" long:"funding" required:"true" description:"funding outpoint as txid:vout, once per vault document"`
	UnvaultFee uint64   `long:"unvault-fee" default:"600" description:"fee paid by the unvault transaction, in satoshis"`
	SpendFee   uint64   `long:"spend-fee" default:"1200" description:"total fee deducted by the time funds reach hot or cold, in satoshis"`
	Args       struct {
		Specs []string `positional-arg-name:"vault-document" required:"1"`
	} `positional-args:"yes"`
}

func (c *vaultCommand) run(a *app, _ []string) error {
	if len(c.Funding) != len(c.Args.Specs) {
		return fmt.Errorf("got %d vault documents but %d funding outpoints", len(c.Args.Specs), len(c.Funding))
	}

	requests := make([]service.VaultRequest, 0, len(c.Args.Specs))
	for i, path := range c.Args.Specs {
		spec, err := specfile.LoadVault(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		funding, err := bitcoin.ParseOutPoint(c.Funding[i])
		if err != nil {
			return err
		}
		requests = append(requests, service.VaultRequest{Spec: spec, Funding: funding})
	}

	plans, err := a.svc.BuildVaults(a.ctx, requests, vault.WithFees(vault.Fees{Unvault: c.UnvaultFee, Spend: c.SpendFee}))
	if err != nil {
		return err
	}
	if len(plans) == 1 {
		return a.print(plans[0])
	}
	return a.print(plans)
}

type describeCommand struct {
	Network string `short:"n" long:"network" default:"mainnet" description:"network used to render addresses"`
	Args    struct {
		Tx string `positional-arg-name:"raw-tx-hex" required:"1"`
	} `positional-args:"yes"`
}

func (c *describeCommand) run(a *app, _ []string) error {
	params, err := bitcoin.ChainParams(model.Network(c.Network))
	if err != nil {
		return err
	}
	tx, err := bitcoin.DecodeTransaction(c.Args.Tx)
	if err != nil {
		return err
	}
	desc, err := bitcoin.DescribeTransaction(tx, params)
	if err != nil {
		return err
	}
	return a.print(desc)
}

type archiveCommand struct {
	Args struct {
		Network string `positional-arg-name:"network" required:"1"`
		Plan    string `positional-arg-name:"plan" required:"1"`
	} `positional-args:"yes"`
}

func (c *archiveCommand) run(a *app, _ []string) error {
	txs, err := a.svc.PlanTransactions(a.ctx, model.Network(c.Args.Network), c.Args.Plan)
	if err != nil {
		if errors.Is(err, service.ErrArchiveDisabled) {
			return errors.New("archive requires --archive")
		}
		return err
	}
	if len(txs) == 0 {
		return fmt.Errorf("plan %s not found", c.Args.Plan)
	}
	return a.print(txs)
}
