package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/engramhq/engram/pkg/model"
)

func deleteCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a memory",
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

			if err := uc.memories.Delete(ctx, model.MemoryID(id), cfg.owner); err != nil {
				return err
			}

			return respond(c.Root().Writer, cfg.jsonOut, map[string]string{"id": id}, func(w io.Writer) {
				fmt.Fprintf(w, "Memory deleted: %s\n", id)
			})
		},
	}
}
