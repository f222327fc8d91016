package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/notify"
	"github.com/phrazzld/memoria/internal/studysync"
)

const timeLayout = "2006-01-02 15:04"

func printSets(w io.Writer, sets []domain.StudySet, activeID string) error {
	if len(sets) == 0 {
		_, err := fmt.Fprintln(w, "No study sets yet. Create one with \"memoria sets new\", \"generate\" or \"import\".")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tCREATED")
	for _, s := range sets {
		marker := ""
		if s.ID == activeID {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", marker, s.ID, s.Name, s.CreatedAt.Local().Format(timeLayout))
	}
	return tw.Flush()
}

func printActiveSet(w io.Writer, snap studysync.Snapshot) error {
	if snap.ActiveSet == nil {
		_, err := fmt.Fprintln(w, "No active study set")
		return err
	}

	fmt.Fprintf(w, "%s (%s), %d cards\n", setLabel(snap.ActiveSet), snap.ActiveSet.ID, len(snap.Cards))
	for i, c := range snap.Cards {
		fmt.Fprintf(w, "\n%d. [%s]\n   Q: %s\n   A: %s\n", i+1, c.ID, c.Question, c.Answer)
	}
	return nil
}

func printNotifications(w io.Writer, notes []notify.Notification) error {
	if len(notes) == 0 {
		_, err := fmt.Fprintln(w, "No notices")
		return err
	}
	for _, n := range notes {
		if _, err := fmt.Fprintf(w, "%s  %s  %-10s %s\n",
			n.ID, n.CreatedAt.Local().Format(timeLayout), n.Kind, n.Message); err != nil {
			return err
		}
	}
	return nil
}

func setLabel(s *domain.StudySet) string {
	if s == nil {
		return ""
	}
	if s.Name == "" {
		return s.ID
	}
	return s.Name
}
