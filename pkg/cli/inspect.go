package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mealgen/pkg/model"
	"github.com/m-mizutani/mealgen/pkg/usecase/generate"
	"github.com/urfave/cli/v3"
)

func inspectCommand() *cli.Command {
	var (
		cfg    config
		userID model.UserID
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID to inspect",
			Sources:     cli.EnvVars("MEALGEN_USER_ID"),
			Destination: (*string)(&userID),
			Required:    true,
		},
	}
	flags = append(flags, storeFlags(&cfg)...)

	return &cli.Command{
		Name:  "inspect",
		Usage: "Show the enriched context and prompt for a user without calling the model",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer safeClose(ctx, repo)

			// No model call is made, so no completer is needed
			uc := generate.New(repo, nil)

			enriched, p, err := uc.Inspect(ctx, userID)
			if err != nil {
				return goerr.Wrap(err, "failed to inspect user")
			}

			w := c.Root().Writer
			fmt.Fprintf(w, "Past meals summary: %s\n", enriched.PastMealsSummary)
			fmt.Fprintf(w, "Variety needs: %s\n", enriched.VarietyNeeds)
			fmt.Fprintf(w, "\n--- Prompt (%d bytes) ---\n%s\n", len(p), p)
			return nil
		},
	}
}
