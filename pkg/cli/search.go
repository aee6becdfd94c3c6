package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/engramhq/engram/pkg/usecase/search"
)

func searchCommand() *cli.Command {
	var (
		cfg   config
		query string
		limit int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Natural language query",
			Sources:     cli.EnvVars("ENGRAM_QUERY"),
			Destination: &query,
			Required:    true,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of results",
			Value:       10,
			Sources:     cli.EnvVars("ENGRAM_LIMIT"),
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "search",
		Usage: "Search memories by meaning",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			hits, err := uc.engine.Search(ctx, search.Input{
				Owner: cfg.owner,
				Query: query,
				Limit: int(limit),
			})
			if err != nil {
				return err
			}

			return respond(c.Root().Writer, cfg.jsonOut, hits, func(w io.Writer) {
				if len(hits) == 0 {
					fmt.Fprintln(w, "No results")
					return
				}
				for _, hit := range hits {
					fmt.Fprintf(w, "%.4f  %s  %s\n", hit.Score, hit.Memory.ID, summarize(hit.Memory.Content))
				}
			})
		},
	}
}
