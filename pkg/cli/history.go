package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mealgen/pkg/model"
	"github.com/urfave/cli/v3"
)

func historyCommand() *cli.Command {
	var (
		cfg    config
		userID model.UserID
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID to list recorded meals for",
			Sources:     cli.EnvVars("MEALGEN_USER_ID"),
			Destination: (*string)(&userID),
			Required:    true,
		},
	}
	flags = append(flags, storeFlags(&cfg)...)

	return &cli.Command{
		Name:  "history",
		Usage: "List recorded meals of a user",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer safeClose(ctx, repo)

			entries, err := repo.ListMeals(ctx, userID)
			if err != nil {
				return goerr.Wrap(err, "failed to list meals", goerr.V("user_id", userID))
			}

			if len(entries) == 0 {
				fmt.Fprintf(c.Root().Writer, "No recorded meals found for user %s\n", userID)
				return nil
			}

			for _, e := range entries {
				fmt.Fprintf(c.Root().Writer, "%s\t%s\t%s\t%d ingredients\t%d steps\n",
					e.GeneratedAt.Format(time.RFC3339),
					e.ID,
					e.RecipeName,
					e.IngredientsCount,
					e.InstructionCount,
				)
			}
			return nil
		},
	}
}
