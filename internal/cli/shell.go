package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// errUnterminatedQuote is returned by splitArgs for a line with an open quote.
var errUnterminatedQuote = errors.New("unterminated quote")

func newShellCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively, keeping the active set between them",
		Long: `Run memoria commands one per line without the "memoria" prefix.
The active set stays selected between commands, so cards can be added to it
without --set. Type "exit" or press Ctrl-D to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			for {
				text, err := readLine(app, "memoria> ")
				if err != nil {
					fmt.Fprintln(app.errOut)
					if errors.Is(err, io.EOF) {
						return nil
					}
					return err
				}

				args, err := splitArgs(text)
				if err != nil {
					fmt.Fprintf(app.errOut, "error: %v\n", err)
					continue
				}
				if len(args) == 0 {
					continue
				}
				if args[0] == "exit" || args[0] == "quit" {
					return nil
				}

				line := newBaseCmd(app)
				line.SetArgs(args)
				line.SetOut(app.out)
				line.SetErr(app.errOut)
				if err := line.ExecuteContext(ctx); err != nil && !IsReported(err) {
					fmt.Fprintf(app.errOut, "error: %v\n", err)
				}
				if ctx.Err() != nil {
					return nil
				}
			}
		},
	}
}

// splitArgs splits a shell line on whitespace. Single or double quotes group
// words. Backslashes are kept as typed so separators like \n reach the codec.
func splitArgs(line string) ([]string, error) {
	var (
		args   []string
		cur    strings.Builder
		inWord bool
		quote  rune
	)

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, errUnterminatedQuote
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}
