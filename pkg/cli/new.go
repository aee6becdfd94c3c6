package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/engramhq/engram/pkg/model"
	"github.com/engramhq/engram/pkg/usecase/memory"
)

func newCommand() *cli.Command {
	var (
		cfg     config
		content string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "content",
			Aliases:     []string{"c"},
			Usage:       "Text content of the memory",
			Sources:     cli.EnvVars("ENGRAM_CONTENT"),
			Destination: &content,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "new",
		Usage: "Create a new memory",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			mem, err := uc.memories.Create(ctx, memory.CreateInput{
				Owner:   cfg.owner,
				Content: content,
			})
			if err != nil {
				if mem != nil && model.HasTag(err, model.TagIndex) {
					// Content row exists but indexing failed: the memory is
					// readable by ID yet invisible to search.
					fmt.Fprintf(c.Root().Writer, "Memory created without index entry: %s\n", mem.ID)
				}
				return err
			}

			return respond(c.Root().Writer, cfg.jsonOut, mem, func(w io.Writer) {
				fmt.Fprintf(w, "Memory created: %s\n", mem.ID)
			})
		},
	}
}
