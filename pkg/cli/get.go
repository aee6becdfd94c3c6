package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/engramhq/engram/pkg/model"
)

func getCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "get",
		Usage:     "Show a memory by ID",
		ArgsUsage: "<memory-id>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("memory ID is required", goerr.T(model.TagValidation))
			}

			uc, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			mem, err := uc.memories.Get(ctx, model.MemoryID(id), cfg.owner)
			if err != nil {
				return err
			}

			return respond(c.Root().Writer, cfg.jsonOut, mem, func(w io.Writer) {
				fmt.Fprintf(w, "ID:      %s\n", mem.ID)
				fmt.Fprintf(w, "Created: %s\n", mem.CreatedAt.Format("2006-01-02 15:04:05"))
				fmt.Fprintf(w, "\n%s\n", mem.Content)
			})
		},
	}
}
