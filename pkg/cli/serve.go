package cli

import (
	"context"

	"github.com/m-mizutani/mealgen/pkg/service/mcp"
	"github.com/m-mizutani/mealgen/pkg/usecase/generate"
	"github.com/m-mizutani/mealgen/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg    config
		record bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "record",
			Usage:       "Record generated meals in the profile store",
			Destination: &record,
		},
	}
	flags = append(flags, storeFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve meal generation as MCP tools over stdio",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer safeClose(ctx, repo)

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			var opts []generate.Option
			if record {
				opts = append(opts, generate.WithRecorder(repo))
			}

			logging.From(ctx).Info("starting MCP server", "store", cfg.store, "model", cfg.geminiModel)
			return mcp.NewServer(generate.New(repo, gemini, opts...)).Run(ctx)
		},
	}
}
