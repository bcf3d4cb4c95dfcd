package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mealgen/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	if err := newApp().Run(ctx, argv); err != nil {
		logging.Default().Error("command failed", logging.ErrAttr(err))
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}

func newApp() *cli.Command {
	var logLevel string

	return &cli.Command{
		Name:  "mealgen",
		Usage: "Personalized meal generation with context-aware prompts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Aliases:     []string{"l"},
				Usage:       "Log level (debug, info, warn, error)",
				Value:       "info",
				Sources:     cli.EnvVars("MEALGEN_LOG_LEVEL"),
				Destination: &logLevel,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if _, err := logging.ParseLevel(logLevel); err != nil {
				return ctx, goerr.Wrap(err, "invalid --log-level")
			}
			logger := logging.New(logLevel, c.Root().ErrWriter)
			logging.SetDefault(logger)
			return logging.With(ctx, logger), nil
		},
		Commands: []*cli.Command{
			generateCommand(),
			inspectCommand(),
			parseCommand(),
			historyCommand(),
			modelsCommand(),
			serveCommand(),
		},
	}
}
