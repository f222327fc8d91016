package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phrazzld/memoria/internal/studysync"
)

func newCardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cards",
		Aliases: []string{"card"},
		Short:   "Add, edit and delete cards of a study set",
	}

	cmd.AddCommand(newCardsAddCmd(app))
	cmd.AddCommand(newCardsEditCmd(app))
	cmd.AddCommand(newCardsDeleteCmd(app))

	return cmd
}

func newCardsAddCmd(app *App) *cobra.Command {
	var setID, question, answer string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a card to a set",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			ctrl, err := app.controller()
			if err != nil {
				return err
			}
			if err := app.selectSet(cmd.Context(), ctrl, setID); err != nil {
				return err
			}
			if err := app.dispatch(cmd.Context(), ctrl, studysync.AddCard{Question: question, Answer: answer}); err != nil {
				return err
			}

			cards := ctrl.Snapshot().Cards
			if len(cards) > 0 {
				fmt.Fprintf(app.out, "Added card %s\n", cards[len(cards)-1].ID)
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&setID, "set", "s", "", "Study set ID (default: the active set)")
	cmd.Flags().StringVarP(&question, "question", "q", "", "Question text (required)")
	cmd.Flags().StringVarP(&answer, "answer", "a", "", "Answer text (required)")

	return cmd
}

func newCardsEditCmd(app *App) *cobra.Command {
	var setID, question, answer string

	cmd := &cobra.Command{
		Use:   "edit <card-id>",
		Short: "Change a card's question, answer or both",
		Args:  cobra.ExactArgs(1),
		RunE: app.runE(func(cmd *cobra.Command, args []string) error {
			ctrl, err := app.controller()
			if err != nil {
				return err
			}
			if err := app.selectSet(cmd.Context(), ctrl, setID); err != nil {
				return err
			}

			q, a := question, answer
			for _, c := range ctrl.Snapshot().Cards {
				if c.ID != args[0] {
					continue
				}
				if !cmd.Flags().Changed("question") {
					q = c.Question
				}
				if !cmd.Flags().Changed("answer") {
					a = c.Answer
				}
			}

			if err := app.dispatch(cmd.Context(), ctrl, studysync.EditCard{CardID: args[0], Question: q, Answer: a}); err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Updated card %s\n", args[0])
			return nil
		}),
	}

	cmd.Flags().StringVarP(&setID, "set", "s", "", "Study set ID (default: the active set)")
	cmd.Flags().StringVarP(&question, "question", "q", "", "New question text")
	cmd.Flags().StringVarP(&answer, "answer", "a", "", "New answer text")

	return cmd
}

func newCardsDeleteCmd(app *App) *cobra.Command {
	var setID string

	cmd := &cobra.Command{
		Use:   "delete <card-id>",
		Short: "Delete a card",
		Args:  cobra.ExactArgs(1),
		RunE: app.runE(func(cmd *cobra.Command, args []string) error {
			ctrl, err := app.controller()
			if err != nil {
				return err
			}
			if err := app.selectSet(cmd.Context(), ctrl, setID); err != nil {
				return err
			}
			if err := app.dispatch(cmd.Context(), ctrl, studysync.DeleteCard{CardID: args[0]}); err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Deleted card %s\n", args[0])
			return nil
		}),
	}

	cmd.Flags().StringVarP(&setID, "set", "s", "", "Study set ID (default: the active set)")

	return cmd
}
