package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errNoticeNotFound = errors.New("notice not found")

func newNoticesCmd(app *App) *cobra.Command {
	var dismissAll bool

	cmd := &cobra.Command{
		Use:   "notices",
		Short: "List recent errors that have not expired",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(_ *cobra.Command, _ []string) error {
			if dismissAll {
				app.notices.Clear()
				return nil
			}
			return printNotifications(app.out, app.notices.Active())
		}),
	}

	cmd.Flags().BoolVar(&dismissAll, "clear", false, "Dismiss every notice")
	cmd.AddCommand(newNoticesDismissCmd(app))

	return cmd
}

func newNoticesDismissCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Dismiss one notice",
		Args:  cobra.ExactArgs(1),
		RunE: app.runE(func(_ *cobra.Command, args []string) error {
			if !app.notices.Dismiss(args[0]) {
				return fmt.Errorf("%w: %s", errNoticeNotFound, args[0])
			}
			fmt.Fprintf(app.out, "Dismissed notice %s\n", args[0])
			return nil
		}),
	}
}
