// Package cli implements the portfolioctl subcommands
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	jsoniter "github.com/json-iterator/go"

	"github.com/bimakw/coin-tracker/internal/application/services"
	"github.com/bimakw/coin-tracker/internal/application/state"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Env is what a command works with
type Env struct {
	Store     *state.Store
	Portfolio *services.PortfolioService
	Search    *services.SearchService
	Refresh   *services.RefreshService
	Stats     *services.StatsService

	Out io.Writer
	Err io.Writer
}

// Opener prepares an Env. The returned function releases it
type Opener func(ctx context.Context) (*Env, func(), error)

// Register adds every command to c
func Register(c *subcommands.Commander, open Opener) {
	c.Register(&listCmd{open: open}, "portfolio")
	c.Register(&addCmd{open: open}, "portfolio")
	c.Register(&setCmd{open: open}, "portfolio")
	c.Register(&removeCmd{open: open}, "portfolio")
	c.Register(&searchCmd{open: open}, "market")
	c.Register(&refreshCmd{open: open}, "market")
	c.Register(&statsCmd{open: open}, "reports")
}

// run opens an Env, runs fn and maps its error to an exit status
func run(ctx context.Context, open Opener, fn func(env *Env) error) subcommands.ExitStatus {
	env, release, err := open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	if err := fn(env); err != nil {
		fmt.Fprintf(env.Err, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
