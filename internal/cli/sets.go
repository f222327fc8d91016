package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phrazzld/memoria/internal/studysync"
)

func newSetsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sets",
		Aliases: []string{"set"},
		Short:   "List, show, create and delete study sets",
	}

	cmd.AddCommand(newSetsListCmd(app))
	cmd.AddCommand(newSetsShowCmd(app))
	cmd.AddCommand(newSetsNewCmd(app))
	cmd.AddCommand(newSetsDeleteCmd(app))

	return cmd
}

func newSetsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your study sets, oldest first",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			ctrl, err := app.controller()
			if err != nil {
				return err
			}
			sets, err := ctrl.LoadSets(cmd.Context())
			if err != nil {
				return err
			}
			var activeID string
			if active := ctrl.Snapshot().ActiveSet; active != nil {
				activeID = active.ID
			}
			return printSets(app.out, sets, activeID)
		}),
	}
}

func newSetsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [set-id]",
		Short: "Make a set active and print its cards",
		Long:  "Make a set active and print its cards. Without an ID the active set is shown.",
		Args:  cobra.MaximumNArgs(1),
		RunE: app.runE(func(cmd *cobra.Command, args []string) error {
			ctrl, err := app.controller()
			if err != nil {
				return err
			}
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			if err := app.selectSet(cmd.Context(), ctrl, id); err != nil {
				return err
			}
			return printActiveSet(app.out, ctrl.Snapshot())
		}),
	}
}

func newSetsNewCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a set holding one example card and make it active",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			ctrl, err := app.controller()
			if err != nil {
				return err
			}
			if err := app.dispatch(cmd.Context(), ctrl, studysync.CreateNewSet{}); err != nil {
				return err
			}
			if err := app.dispatch(cmd.Context(), ctrl, studysync.InitEmptySet{Name: name}); err != nil {
				return err
			}
			return printActiveSet(app.out, ctrl.Snapshot())
		}),
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Set name (default: generated)")

	return cmd
}

func newSetsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete [set-id]",
		Short: "Delete a set and all of its cards",
		Long:  "Delete a set and all of its cards. Without an ID the active set is deleted.",
		Args:  cobra.MaximumNArgs(1),
		RunE: app.runE(func(cmd *cobra.Command, args []string) error {
			ctrl, err := app.controller()
			if err != nil {
				return err
			}
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			if err := app.selectSet(cmd.Context(), ctrl, id); err != nil {
				return err
			}

			snap := ctrl.Snapshot()
			if !yes {
				answer, err := readLine(app, fmt.Sprintf("Delete %q and its %d cards? [y/N] ",
					setLabel(snap.ActiveSet), len(snap.Cards)))
				if err != nil {
					return err
				}
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					fmt.Fprintln(app.out, "Cancelled")
					return nil
				}
			}

			if err := app.dispatch(cmd.Context(), ctrl, studysync.DeleteActiveSet{}); err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Deleted %q\n", setLabel(snap.ActiveSet))
			if next := ctrl.Snapshot().ActiveSet; next != nil {
				fmt.Fprintf(app.out, "Active set is now %q\n", setLabel(next))
			}
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}
