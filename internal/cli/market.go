package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/bimakw/coin-tracker/internal/application/services"
)

type searchCmd struct {
	open   Opener
	asJSON bool
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search coins by name or symbol" }
func (*searchCmd) Usage() string {
	return `portfolioctl search [-json] <text>

  Prints matching coins. Coins already in the portfolio are marked.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.asJSON, "json", false, "Print JSON instead of a list")
}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a search term is required.")
		return subcommands.ExitUsageError
	}
	query := strings.Join(f.Args(), " ")

	return run(ctx, c.open, func(env *Env) error {
		resp := env.Search.Search(ctx, query)
		if c.asJSON {
			return writeJSON(env.Out, resp)
		}
		if resp.Error != "" {
			return fmt.Errorf("%s", resp.Error)
		}
		if len(resp.Results) == 0 {
			fmt.Fprintf(env.Out, "No results found for '%s'.\n", resp.Query)
			return nil
		}

		for _, r := range resp.Results {
			marker := " "
			if r.AlreadyAdded {
				marker = "*"
			}
			fmt.Fprintf(env.Out, "%s %-24s %-8s %s\n", marker, r.ID, strings.ToUpper(r.Symbol), r.Name)
		}
		fmt.Fprintln(env.Out, "\n* already in the portfolio")
		return nil
	})
}

type refreshCmd struct {
	open Opener
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "fetch the latest prices for every holding" }
func (*refreshCmd) Usage() string {
	return `portfolioctl refresh

  Fetches current prices and 24h changes. On failure nothing is changed.
`
}

func (*refreshCmd) SetFlags(*flag.FlagSet) {}

func (c *refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, c.open, func(env *Env) error {
		result, err := env.Refresh.Refresh(ctx)
		if err != nil {
			return fmt.Errorf("%s", services.UserMessage(err))
		}
		if result.Requested == 0 {
			fmt.Fprintln(env.Out, "Nothing to refresh.")
			return nil
		}

		fmt.Fprintf(env.Out, "Updated %d of %d holdings.\n", result.Updated, result.Requested)
		if len(result.Missing) > 0 {
			fmt.Fprintf(env.Out, "No price for: %s\n", strings.Join(result.Missing, ", "))
		}
		if result.Warning != "" {
			fmt.Fprintln(env.Err, result.Warning)
		}
		return nil
	})
}
