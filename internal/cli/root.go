package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the memoria command tree on top of app.
func NewRootCmd(app *App) *cobra.Command {
	root := newBaseCmd(app)
	root.AddCommand(newShellCmd(app))
	return root
}

// newBaseCmd is every command except shell, which must not nest.
func newBaseCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "memoria",
		Short: "Study flashcards generated from your documents",
		Long: `Memoria turns documents into flashcards and keeps them in study sets.

Generate a set from a PDF, DOCX or text file, import one from CSV or JSON,
edit its cards and export it again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newAuthCmd(app))
	root.AddCommand(newSetsCmd(app))
	root.AddCommand(newCardsCmd(app))
	root.AddCommand(newGenerateCmd(app))
	root.AddCommand(newImportCmd(app))
	root.AddCommand(newExportCmd(app))
	root.AddCommand(newNoticesCmd(app))

	return root
}
