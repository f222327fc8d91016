package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/phrazzld/memoria/internal/codec"
	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/generation"
	"github.com/phrazzld/memoria/internal/studysync"
)

// separatorFlags are the CSV separator flags shared by import and export.
type separatorFlags struct {
	field        string
	record       string
	customField  string
	customRecord string
}

func (s *separatorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.field, "field-sep", codec.FieldSeparatorPresets[0],
		fmt.Sprintf("Field separator preset %q", codec.FieldSeparatorPresets))
	cmd.Flags().StringVar(&s.record, "record-sep", codec.RecordSeparatorPresets[0],
		fmt.Sprintf("Record separator preset %q", codec.RecordSeparatorPresets))
	cmd.Flags().StringVar(&s.customField, "custom-field-sep", "",
		`Custom field separator, overrides --field-sep (\t, \n, \r and \\ are unescaped)`)
	cmd.Flags().StringVar(&s.customRecord, "custom-record-sep", "",
		`Custom record separator, overrides --record-sep (\t, \n, \r and \\ are unescaped)`)
}

// options resolves the flags into codec options for format.
func (s *separatorFlags) options(format codec.Format) (codec.Options, error) {
	if s.customField == "" && !slices.Contains(codec.FieldSeparatorPresets, s.field) {
		return codec.Options{}, domain.NewValidationError("field-sep",
			fmt.Sprintf("must be one of %q or use --custom-field-sep", codec.FieldSeparatorPresets), nil)
	}
	if s.customRecord == "" && !slices.Contains(codec.RecordSeparatorPresets, s.record) {
		return codec.Options{}, domain.NewValidationError("record-sep",
			fmt.Sprintf("must be one of %q or use --custom-record-sep", codec.RecordSeparatorPresets), nil)
	}
	return codec.Options{
		Format:          format,
		FieldSeparator:  codec.ResolveSeparator(s.field, s.customField),
		RecordSeparator: codec.ResolveSeparator(s.record, s.customRecord),
	}, nil
}

func newGenerateCmd(app *App) *cobra.Command {
	var (
		name string
		opts generation.Options
	)

	cmd := &cobra.Command{
		Use:   "generate <file>",
		Short: "Generate a study set from a PDF, DOCX or text document",
		Args:  cobra.ExactArgs(1),
		RunE: app.runE(func(cmd *cobra.Command, args []string) error {
			ctrl, err := app.controller()
			if err != nil {
				return err
			}
			// rejected before the file is read or anything is sent
			if _, err := generation.KindOf(args[0]); err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			fmt.Fprintf(app.errOut, "Generating flashcards from %s...\n", filepath.Base(args[0]))
			doc := generation.Document{Filename: filepath.Base(args[0]), Data: data}
			if err := app.dispatch(cmd.Context(), ctrl, studysync.GenerateSet{
				Document: doc,
				Options:  opts,
				Name:     name,
			}); err != nil {
				return err
			}
			return printActiveSet(app.out, ctrl.Snapshot())
		}),
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Set name (default: generated)")
	cmd.Flags().StringVarP(&opts.Language, "language", "l", generation.DefaultLanguage, "Language of the flashcards")
	cmd.Flags().IntVarP(&opts.DetailLevel, "detail", "d", generation.DefaultDetailLevel,
		fmt.Sprintf("Detail level from %d to %d", generation.MinDetailLevel, generation.MaxDetailLevel))
	cmd.Flags().StringVarP(&opts.Keywords, "keywords", "k", "", "Comma-separated keywords to focus on")
	cmd.Flags().StringVarP(&opts.StudyGoal, "goal", "g", generation.DefaultStudyGoal,
		"Study goal, e.g. understanding, memorization or exam")

	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var (
		name string
		seps separatorFlags
	)

	cmd := &cobra.Command{
		Use:   "import <file.csv|file.json>",
		Short: "Create a study set from a CSV or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: app.runE(func(cmd *cobra.Command, args []string) error {
			ctrl, err := app.controller()
			if err != nil {
				return err
			}
			format, err := codec.FormatFromFilename(args[0])
			if err != nil {
				return err
			}
			opts, err := seps.options(format)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			if err := app.dispatch(cmd.Context(), ctrl, studysync.ImportSet{
				Filename: filepath.Base(args[0]),
				Data:     data,
				Options:  opts,
				Name:     name,
			}); err != nil {
				return err
			}
			return printActiveSet(app.out, ctrl.Snapshot())
		}),
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Set name (default: generated)")
	seps.register(cmd)

	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var (
		setID  string
		format string
		output string
		seps   separatorFlags
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a study set to a CSV or JSON file",
		Long: `Write a study set to a CSV or JSON file. The file is named
<set name>_export.<format> in the current directory unless --output is given;
--output - writes to standard output.`,
		Args: cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			ctrl, err := app.controller()
			if err != nil {
				return err
			}
			f, err := codec.ParseFormat(format)
			if err != nil {
				return err
			}
			opts, err := seps.options(f)
			if err != nil {
				return err
			}

			id := setID
			if id == "" {
				active := ctrl.Snapshot().ActiveSet
				if active == nil {
					return studysync.ErrNoActiveSet
				}
				id = active.ID
			}

			data, filename, err := ctrl.ExportSet(cmd.Context(), id, opts)
			if err != nil {
				return err
			}

			if output == "-" {
				_, err := app.out.Write(data)
				return err
			}
			if output == "" {
				output = filename
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(app.out, "Exported to %s\n", output)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&setID, "set", "s", "", "Study set ID (default: the active set)")
	cmd.Flags().StringVarP(&format, "format", "f", string(codec.FormatCSV), "File format: csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path, or - for standard output")
	seps.register(cmd)

	return cmd
}
