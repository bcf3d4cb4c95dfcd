package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func modelsCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "models",
		Usage: "List available Gemini models",
		Flags: llmFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			models, err := gemini.ListModels(ctx)
			if err != nil {
				return err
			}

			for _, m := range models {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\n", m.Name, m.DisplayName)
			}
			return nil
		},
	}
}
