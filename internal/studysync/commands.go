package studysync

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/memoria/internal/codec"
	"github.com/phrazzld/memoria/internal/generation"
	"github.com/phrazzld/memoria/internal/platform/logger"
)

// Command is a user request executed by Controller.Dispatch.
type Command interface {
	name() string
	execute(ctx context.Context, c *Controller) error
}

// SelectSet makes a set active and loads its cards.
type SelectSet struct{ ID string }

// AddCard adds a card to the active set.
type AddCard struct{ Question, Answer string }

// EditCard replaces a card's question and answer.
type EditCard struct{ CardID, Question, Answer string }

// DeleteCard removes a card from the active set.
type DeleteCard struct{ CardID string }

// DeleteActiveSet deletes the active set and its cards.
type DeleteActiveSet struct{}

// CreateNewSet clears the active set ahead of a creation flow.
type CreateNewSet struct{}

// GenerateSet creates a set from a document.
type GenerateSet struct {
	Document generation.Document
	Options  generation.Options
	Name     string
}

// ImportSet creates a set from a CSV or JSON file.
type ImportSet struct {
	Filename string
	Data     []byte
	Options  codec.Options
	Name     string
}

// InitEmptySet creates a set holding the example card.
type InitEmptySet struct{ Name string }

func (SelectSet) name() string       { return "select_set" }
func (AddCard) name() string         { return "add_card" }
func (EditCard) name() string        { return "edit_card" }
func (DeleteCard) name() string      { return "delete_card" }
func (DeleteActiveSet) name() string { return "delete_active_set" }
func (CreateNewSet) name() string    { return "create_new_set" }
func (GenerateSet) name() string     { return "generate_set" }
func (ImportSet) name() string       { return "import_set" }
func (InitEmptySet) name() string    { return "init_empty_set" }

func (cmd SelectSet) execute(ctx context.Context, c *Controller) error {
	return c.SelectSet(ctx, cmd.ID)
}

func (cmd AddCard) execute(ctx context.Context, c *Controller) error {
	_, err := c.AddCard(ctx, cmd.Question, cmd.Answer)
	return err
}

func (cmd EditCard) execute(ctx context.Context, c *Controller) error {
	return c.EditCard(ctx, cmd.CardID, cmd.Question, cmd.Answer)
}

func (cmd DeleteCard) execute(ctx context.Context, c *Controller) error {
	return c.DeleteCard(ctx, cmd.CardID)
}

func (DeleteActiveSet) execute(ctx context.Context, c *Controller) error {
	return c.DeleteActiveSet(ctx)
}

func (CreateNewSet) execute(_ context.Context, c *Controller) error {
	c.CreateNewSet()
	return nil
}

func (cmd GenerateSet) execute(ctx context.Context, c *Controller) error {
	_, err := c.GenerateSet(ctx, cmd.Document, cmd.Options, cmd.Name)
	return err
}

func (cmd ImportSet) execute(ctx context.Context, c *Controller) error {
	_, err := c.ImportSet(ctx, cmd.Filename, cmd.Data, cmd.Options, cmd.Name)
	return err
}

func (cmd InitEmptySet) execute(ctx context.Context, c *Controller) error {
	_, err := c.InitEmptySet(ctx, cmd.Name)
	return err
}

// Dispatch executes cmd. Failures are returned and, when the controller has
// a notification center, published to it; a cancelled context is not
// reported.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) error {
	err := cmd.execute(ctx, c)
	if err == nil {
		return nil
	}

	logger.FromContextOrDefault(ctx, c.logger).Debug("command failed",
		slog.String("command", cmd.name()),
		slog.String("error", err.Error()))

	if c.notices != nil && !errors.Is(err, context.Canceled) {
		c.notices.PublishError(ctx, err)
	}
	return err
}
