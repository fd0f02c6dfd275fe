package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/subcommands"
)

type statsCmd struct {
	open   Opener
	asJSON bool
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "show totals in USD and EUR and the allocation" }
func (*statsCmd) Usage() string {
	return `portfolioctl stats [-json]

  Prints the portfolio totals in both currencies and how the portfolio is
  split by current value and by amount invested.
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.asJSON, "json", false, "Print JSON, including chart geometry")
}

func (c *statsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, c.open, func(env *Env) error {
		stats := env.Stats.GetStats(ctx)
		if c.asJSON {
			return writeJSON(env.Out, stats)
		}

		t := stats.Totals
		fmt.Fprintf(env.Out, "Current value: %s (%s)\n", t.CurrentValue.USD, t.CurrentValue.EUR)
		fmt.Fprintf(env.Out, "Invested:      %s (%s)\n", t.InvestedValue.USD, t.InvestedValue.EUR)
		fmt.Fprintf(env.Out, "Profit:        %s (%s) %s\n", t.Profit.USD, t.Profit.EUR, t.ProfitPercent)
		fmt.Fprintf(env.Out, "Last refresh:  %s\n", formatLastRefresh(stats.LastRefresh))

		for _, ch := range stats.Charts {
			fmt.Fprintf(env.Out, "\n%s\n", ch.Title)
			if ch.Empty {
				fmt.Fprintln(env.Out, "  nothing to show")
				continue
			}
			tw := tabwriter.NewWriter(env.Out, 0, 0, 2, ' ', 0)
			for _, seg := range ch.Segments {
				fmt.Fprintf(tw, "  %s\t%s\t%.2f\t\n", seg.Badge, seg.PercentageLabel, seg.Entry.Value)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
		}
		return nil
	})
}
