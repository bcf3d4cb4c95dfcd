package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/mealgen/pkg/parser"
	"github.com/urfave/cli/v3"
)

func parseCommand() *cli.Command {
	var inputPath string

	return &cli.Command{
		Name:  "parse",
		Usage: "Parse a saved model reply into meal JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "Path to the reply text file (- for stdin)",
				Destination: &inputPath,
				Required:    true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			var (
				data []byte
				err  error
			)
			if inputPath == "-" {
				data, err = io.ReadAll(c.Root().Reader)
			} else {
				data, err = os.ReadFile(inputPath)
			}
			if err != nil {
				return goerr.Wrap(err, "failed to read input file", goerr.V("path", inputPath))
			}

			out, err := parser.MarshalJSON(parser.Parse(string(data)))
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "%s\n", string(out))
			return nil
		},
	}
}
