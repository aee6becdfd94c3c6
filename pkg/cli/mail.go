package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/engramhq/engram/pkg/model"
	"github.com/engramhq/engram/pkg/usecase/mail"
)

func mailCommand() *cli.Command {
	return &cli.Command{
		Name:  "mail",
		Usage: "Email-shaped memories with structured attributes",
		Commands: []*cli.Command{
			mailNewCommand(),
			mailShowCommand(),
			mailListCommand(),
			mailDeleteCommand(),
			mailSearchCommand(),
		},
	}
}

func mailNewCommand() *cli.Command {
	var (
		cfg        config
		subject    string
		body       string
		sender     string
		recipients []string
		date       string
		messageID  string
		inReplyTo  string
		company    string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "subject",
			Aliases:     []string{"s"},
			Usage:       "Mail subject",
			Destination: &subject,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "body",
			Aliases:     []string{"b"},
			Usage:       "Mail body",
			Destination: &body,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "from",
			Aliases:     []string{"f"},
			Usage:       "Sender address",
			Destination: &sender,
			Required:    true,
		},
		&cli.StringSliceFlag{
			Name:        "to",
			Aliases:     []string{"t"},
			Usage:       "Recipient address (repeatable)",
			Destination: &recipients,
		},
		&cli.StringFlag{
			Name:        "date",
			Usage:       "Mail date (RFC3339)",
			Destination: &date,
		},
		&cli.StringFlag{
			Name:        "message-id",
			Usage:       "Message-ID header",
			Destination: &messageID,
		},
		&cli.StringFlag{
			Name:        "in-reply-to",
			Usage:       "In-Reply-To header",
			Destination: &inReplyTo,
		},
		&cli.StringFlag{
			Name:        "company",
			Usage:       "Company attribute (derived from sender when omitted)",
			Destination: &company,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "new",
		Usage: "Create a mail-backed memory",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			var mailDate time.Time
			if date != "" {
				parsed, err := time.Parse(time.RFC3339, date)
				if err != nil {
					return goerr.Wrap(err, "invalid date, expected RFC3339",
						goerr.V("date", date), goerr.T(model.TagValidation))
				}
				mailDate = parsed
			}

			uc, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			record, err := uc.mails.Create(ctx, mail.CreateInput{
				Owner:      cfg.owner,
				Subject:    subject,
				Body:       body,
				Sender:     sender,
				Recipients: recipients,
				Date:       mailDate,
				MessageID:  messageID,
				InReplyTo:  inReplyTo,
				Company:    company,
			})
			if err != nil {
				return err
			}

			return respond(c.Root().Writer, cfg.jsonOut, record, func(w io.Writer) {
				fmt.Fprintf(w, "Mail memory created: %s\n", record.ID)
			})
		},
	}
}

func mailShowCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "show",
		Usage:     "Show a mail memory with its content",
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

			detail, err := uc.mails.Get(ctx, model.MemoryID(id), cfg.owner)
			if err != nil {
				return err
			}

			return respond(c.Root().Writer, cfg.jsonOut, detail, func(w io.Writer) {
				record := detail.Record
				fmt.Fprintf(w, "ID:      %s\n", record.ID)
				fmt.Fprintf(w, "From:    %s\n", record.Sender)
				if len(record.Recipients) > 0 {
					fmt.Fprintf(w, "To:      %s\n", strings.Join(record.Recipients, ", "))
				}
				fmt.Fprintf(w, "Subject: %s\n", record.Subject)
				if !record.Date.IsZero() {
					fmt.Fprintf(w, "Date:    %s\n", record.Date.Format("2006-01-02 15:04:05"))
				}
				if record.Company != "" {
					fmt.Fprintf(w, "Company: %s\n", record.Company)
				}
				fmt.Fprintf(w, "\n%s\n", detail.Content)
			})
		},
	}
}

func mailListCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List mail memories, most recent mail date first",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			records, err := uc.mails.List(ctx, cfg.owner)
			if err != nil {
				return err
			}

			return respond(c.Root().Writer, cfg.jsonOut, records, func(w io.Writer) {
				if len(records) == 0 {
					fmt.Fprintln(w, "No mail memories found")
					return
				}
				for _, record := range records {
					fmt.Fprintf(w, "%s  %s  %-20s  %s\n",
						record.ID, record.Date.Format("2006-01-02"), record.Sender, record.Subject)
				}
			})
		},
	}
}

func mailDeleteCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a mail memory and its content",
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

			if err := uc.mails.Delete(ctx, model.MemoryID(id), cfg.owner); err != nil {
				return err
			}

			return respond(c.Root().Writer, cfg.jsonOut, map[string]string{"id": id}, func(w io.Writer) {
				fmt.Fprintf(w, "Mail memory deleted: %s\n", id)
			})
		},
	}
}

func mailSearchCommand() *cli.Command {
	var (
		cfg     config
		query   string
		company string
		limit   int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Natural language query",
			Destination: &query,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "company",
			Usage:       "Keep only hits from this company",
			Destination: &company,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of results",
			Value:       10,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "search",
		Usage: "Search mail memories by meaning",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			hits, err := uc.mails.Search(ctx, mail.SearchInput{
				Owner:   cfg.owner,
				Query:   query,
				Limit:   int(limit),
				Company: company,
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
					if hit.Record == nil {
						fmt.Fprintf(w, "%.4f  (no attributes)  %s\n", hit.Score, summarize(hit.Content))
						continue
					}
					fmt.Fprintf(w, "%.4f  %s  %-20s  %s\n",
						hit.Score, hit.Record.ID, hit.Record.Sender, hit.Record.Subject)
				}
			})
		},
	}
}
