package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/engramhq/engram/pkg/model"
	"github.com/engramhq/engram/pkg/usecase/memory"
)

func updateCommand() *cli.Command {
	var (
		cfg     config
		content string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "content",
			Aliases:     []string{"c"},
			Usage:       "Replacement text content",
			Sources:     cli.EnvVars("ENGRAM_CONTENT"),
			Destination: &content,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "update",
		Usage:     "Replace the content of a memory",
		ArgsUsage: "<memory-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.New("memory ID is required", goerr.T(model.TagValidation))
			}

			uc, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			if err := uc.memories.Update(ctx, memory.UpdateInput{
				ID:      model.MemoryID(id),
				Owner:   cfg.owner,
				Content: content,
			}); err != nil {
				return err
			}

			return respond(c.Root().Writer, cfg.jsonOut, map[string]string{"id": id}, func(w io.Writer) {
				fmt.Fprintf(w, "Memory updated: %s\n", id)
			})
		},
	}
}
