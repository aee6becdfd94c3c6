package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List memories for the owner, newest first",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			memories, err := uc.memories.List(ctx, cfg.owner)
			if err != nil {
				return err
			}

			return respond(c.Root().Writer, cfg.jsonOut, memories, func(w io.Writer) {
				if len(memories) == 0 {
					fmt.Fprintln(w, "No memories found")
					return
				}
				for _, mem := range memories {
					fmt.Fprintf(w, "%s  %s  %s\n",
						mem.ID, mem.CreatedAt.Format("2006-01-02 15:04"), summarize(mem.Content))
				}
			})
		},
	}
}

// summarize trims content to a single short line for table output.
func summarize(content string) string {
	const maxLen = 60
	for i, r := range content {
		if r == '\n' || i >= maxLen {
			return content[:i] + "..."
		}
	}
	return content
}
