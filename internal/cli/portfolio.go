package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/domain/valuation"
)

type listCmd struct {
	open   Opener
	asJSON bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list holdings with their value and profit" }
func (*listCmd) Usage() string {
	return `portfolioctl list [-json]

  Prints every holding with its current value, profit and 24h change,
  followed by the portfolio totals.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.asJSON, "json", false, "Print JSON instead of a table")
}

func (c *listCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, c.open, func(env *Env) error {
		p := env.Portfolio.GetPortfolio(ctx)
		if c.asJSON {
			return writeJSON(env.Out, p)
		}

		if len(p.Holdings) == 0 {
			fmt.Fprintln(env.Out, "No holdings. Use 'portfolioctl search' and 'portfolioctl add' to start tracking a coin.")
			return nil
		}

		tw := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "ID\tSYMBOL\tQUANTITY\tINVESTED\tPRICE\tVALUE\tPROFIT\tPROFIT %\t24H\t")
		for _, h := range p.Holdings {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\t%.2f\t%.2f\t%s\t%s\t\n",
				h.ID,
				h.Symbol,
				formatFloat(h.Quantity),
				valuation.Invested(h.Holding),
				formatFloat(h.CurrentPrice),
				h.CurrentValue,
				h.Profit,
				h.ProfitPercentLabel,
				h.Change24hLabel,
			)
		}
		fmt.Fprintf(tw, "TOTAL\t\t\t%.2f\t\t%.2f\t%.2f\t%s\t\t\n",
			p.Totals.InvestedValue,
			p.Totals.CurrentValue,
			p.Totals.Profit,
			p.ProfitPercent,
		)
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(env.Out, "\nLast refresh: %s\n", formatLastRefresh(p.LastRefresh))
		return nil
	})
}

type addCmd struct {
	open  Opener
	query string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "start tracking a coin" }
func (*addCmd) Usage() string {
	return `portfolioctl add [-query <text>] <coin id>

  Looks the coin up by searching for -query (the id by default) and adds
  the result whose id matches exactly. Quantity, invested amount and buy
  price start at 0; set them with 'portfolioctl set'.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "query", "", "Search text used to find the coin (defaults to the id)")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one coin id is required.")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	query := c.query
	if query == "" {
		query = id
	}

	return run(ctx, c.open, func(env *Env) error {
		result, found, err := env.Search.Find(ctx, query, id)
		if err != nil {
			return fmt.Errorf("failed to look up %q: %w", id, err)
		}
		if !found {
			return fmt.Errorf("no coin with id %q found searching for %q", id, query)
		}

		h, err := env.Portfolio.AddHolding(ctx, result.Token())
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "Added %s (%s).\n", h.Name, h.ID)
		return nil
	})
}

type setCmd struct {
	open Opener
}

func (*setCmd) Name() string     { return "set" }
func (*setCmd) Synopsis() string { return "set quantity, invested or buyPrice of a holding" }
func (*setCmd) Usage() string {
	return `portfolioctl set <coin id> <quantity|invested|buyPrice> <value>

  Updates one figure of a holding. An empty value sets it to 0.
`
}

func (*setCmd) SetFlags(*flag.FlagSet) {}

func (c *setCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		fmt.Fprintln(os.Stderr, "Error: expected <coin id> <field> <value>.")
		return subcommands.ExitUsageError
	}
	id, field, value := f.Arg(0), f.Arg(1), f.Arg(2)

	if !entities.HoldingField(field).Valid() {
		fmt.Fprintf(os.Stderr, "Error: unknown field %q, expected quantity, invested or buyPrice.\n", field)
		return subcommands.ExitUsageError
	}

	return run(ctx, c.open, func(env *Env) error {
		h, err := env.Portfolio.UpdateHolding(ctx, id, field, value)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "%s: quantity %s, invested %.2f, buy price %s, profit %s.\n",
			h.ID,
			formatFloat(h.Quantity),
			valuation.Invested(h.Holding),
			formatFloat(h.BuyPrice),
			h.ProfitPercentLabel,
		)
		return nil
	})
}

type removeCmd struct {
	open Opener
}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "stop tracking a coin" }
func (*removeCmd) Usage() string {
	return `portfolioctl remove <coin id>
`
}

func (*removeCmd) SetFlags(*flag.FlagSet) {}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one coin id is required.")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)

	return run(ctx, c.open, func(env *Env) error {
		if err := env.Portfolio.RemoveHolding(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(env.Out, "Removed %s.\n", id)
		return nil
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatLastRefresh(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
