package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mealgen/pkg/adapter"
	"github.com/m-mizutani/mealgen/pkg/model"
	"github.com/m-mizutani/mealgen/pkg/parser"
	"github.com/m-mizutani/mealgen/pkg/usecase/generate"
	"github.com/m-mizutani/mealgen/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func generateCommand() *cli.Command {
	var (
		cfg          config
		userID       model.UserID
		count        int64
		parse        bool
		record       bool
		outputDir    string
		outputBucket string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID to generate meals for",
			Sources:     cli.EnvVars("MEALGEN_USER_ID"),
			Destination: (*string)(&userID),
			Required:    true,
		},
		&cli.IntFlag{
			Name:        "count",
			Aliases:     []string{"n"},
			Usage:       "Number of meals to generate",
			Value:       1,
			Destination: &count,
		},
		&cli.BoolFlag{
			Name:        "parse",
			Usage:       "Print parsed meals as JSON instead of the raw reply",
			Destination: &parse,
		},
		&cli.BoolFlag{
			Name:        "record",
			Usage:       "Record generated meals in the profile store",
			Destination: &record,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Directory to save parsed meals as JSON files",
			Destination: &outputDir,
		},
		&cli.StringFlag{
			Name:        "output-bucket",
			Usage:       "Cloud Storage bucket to save parsed meals as JSON objects",
			Sources:     cli.EnvVars("MEALGEN_OUTPUT_BUCKET"),
			Destination: &outputBucket,
		},
	}
	flags = append(flags, storeFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "generate",
		Usage: "Generate personalized meals for a user",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// Initialize dependencies
			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}
			defer safeClose(ctx, repo)

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			storage, err := newStorage(ctx, outputBucket, outputDir)
			if err != nil {
				return err
			}

			var opts []generate.Option
			if record {
				opts = append(opts, generate.WithRecorder(repo))
			}
			uc := generate.New(repo, gemini, opts...)

			s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(c.Root().ErrWriter))
			s.Suffix = fmt.Sprintf(" generating %d meal(s) for %s", count, userID)
			s.Start()

			// Raw replies are printed verbatim unless parsing is needed
			if !parse && !record && storage == nil {
				replies, err := uc.GenerateMany(ctx, userID, int(count))
				s.Stop()
				if err != nil {
					return goerr.Wrap(err, "failed to generate meals")
				}

				for i, text := range replies {
					if len(replies) > 1 {
						fmt.Fprintf(c.Root().Writer, "=== Meal %d/%d ===\n", i+1, len(replies))
					}
					fmt.Fprintf(c.Root().Writer, "%s\n", text)
				}
				return nil
			}

			meals, err := uc.GenerateMeals(ctx, userID, int(count))
			s.Stop()
			if err != nil {
				return goerr.Wrap(err, "failed to generate meals")
			}

			for _, meal := range meals {
				data, err := parser.MarshalJSON(meal)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.Root().Writer, "%s\n", string(data))

				if storage != nil && !meal.IsEmpty() {
					key := fmt.Sprintf("meals/%s/%s.json", userID, model.NewMealID())
					if err := saveArtifact(ctx, storage, key, data); err != nil {
						return err
					}
					logging.From(ctx).Info("meal saved", "key", key, "recipe_name", meal.RecipeName)
				}
			}

			return nil
		},
	}
}

func saveArtifact(ctx context.Context, storage adapter.Storage, key string, data []byte) error {
	w, err := storage.Put(ctx, key)
	if err != nil {
		return goerr.Wrap(err, "failed to open artifact", goerr.V("key", key))
	}

	if _, err := w.Write(data); err != nil {
		safeClose(ctx, w)
		return goerr.Wrap(err, "failed to write artifact", goerr.V("key", key))
	}

	// Cloud Storage commits the object on Close
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to save artifact", goerr.V("key", key))
	}
	return nil
}

func safeClose(ctx context.Context, c io.Closer) {
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("failed to close", logging.ErrAttr(err))
	}
}
