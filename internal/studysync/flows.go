package studysync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/memoria/internal/codec"
	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/generation"
	"github.com/phrazzld/memoria/internal/platform/logger"
)

// GenerateSet sends doc to the generation service and stores the returned
// cards as a new active set. Unsupported documents are rejected before any
// network call.
func (c *Controller) GenerateSet(
	ctx context.Context,
	doc generation.Document,
	opts generation.Options,
	name string,
) (domain.StudySet, error) {
	if c.generator == nil {
		return domain.StudySet{}, ErrNoGenerator
	}
	if err := generation.ValidateDocument(doc); err != nil {
		return domain.StudySet{}, err
	}

	drafts, err := c.generator.Generate(ctx, c.Session(), doc, opts.Normalize())
	if err != nil {
		return domain.StudySet{}, err
	}

	return c.createAndActivate(ctx, name, drafts, "generate")
}

// ImportSet decodes a CSV or JSON file and stores its cards as a new active
// set. The format comes from opts, or from the filename when opts leaves it
// empty; either way the filename must carry a .csv or .json extension. Blank
// separators mean the default ones.
func (c *Controller) ImportSet(
	ctx context.Context,
	filename string,
	data []byte,
	opts codec.Options,
	name string,
) (domain.StudySet, error) {
	format, err := codec.FormatFromFilename(filename)
	if err != nil {
		return domain.StudySet{}, err
	}
	drafts, err := codec.Import(data, withDefaults(opts, format))
	if err != nil {
		return domain.StudySet{}, err
	}

	return c.createAndActivate(ctx, name, drafts, "import")
}

// InitEmptySet stores a new set holding only the example card and makes it
// active.
func (c *Controller) InitEmptySet(ctx context.Context, name string) (domain.StudySet, error) {
	return c.createAndActivate(ctx, name, []domain.CardDraft{domain.ExampleCard()}, "empty")
}

// ExportSet encodes the cards of set id and returns the file content and
// name. The active set is exported from local state; any other set is read
// from the store.
func (c *Controller) ExportSet(ctx context.Context, id string, opts codec.Options) ([]byte, string, error) {
	if id == "" {
		return nil, "", domain.ErrEmptyStudySetID
	}
	opts = withDefaults(opts, codec.FormatCSV)

	c.mu.Lock()
	sess := c.sess
	var (
		name  string
		cards []domain.Flashcard
		local bool
	)
	if i := indexOfSet(c.sets, id); i >= 0 {
		name = c.sets[i].Name
	}
	if c.active != nil && c.active.ID == id && !c.loading {
		name = c.active.Name
		cards = cloneCards(c.cards)
		local = true
	}
	c.mu.Unlock()

	if !local {
		var err error
		if cards, err = c.store.ListCards(ctx, sess, id); err != nil {
			return nil, "", fmt.Errorf("failed to load cards: %w", err)
		}
	}

	data, err := codec.Export(domain.Drafts(cards), opts)
	if err != nil {
		return nil, "", err
	}
	return data, codec.ExportFilename(name, opts.Format), nil
}

// withDefaults fills a blank format, and both separators when neither is set.
func withDefaults(opts codec.Options, format codec.Format) codec.Options {
	if opts.Format == "" {
		opts.Format = format
	}
	if opts.FieldSeparator == "" && opts.RecordSeparator == "" {
		d := codec.DefaultOptions()
		opts.FieldSeparator, opts.RecordSeparator = d.FieldSeparator, d.RecordSeparator
	}
	return opts
}

func (c *Controller) createAndActivate(
	ctx context.Context,
	name string,
	drafts []domain.CardDraft,
	flow string,
) (domain.StudySet, error) {
	c.mu.Lock()
	loaded := c.setsLoaded
	c.mu.Unlock()
	if !loaded {
		if _, err := c.LoadSets(ctx); err != nil {
			return domain.StudySet{}, err
		}
	}

	c.mu.Lock()
	sess, existing := c.sess, len(c.sets)
	c.mu.Unlock()

	set, err := c.store.CreateStudySetWithCards(ctx, sess, domain.ResolveStudySetName(name, existing), drafts)
	if err != nil {
		return domain.StudySet{}, fmt.Errorf("failed to create study set: %w", err)
	}

	c.mu.Lock()
	meta := set
	meta.Cards = nil
	c.sets = append(c.sets, meta)
	c.resetActiveLocked()
	c.active = &meta
	c.cards = cloneCards(set.Cards)
	if c.cards == nil {
		c.cards = []domain.Flashcard{}
	}
	c.mu.Unlock()

	logger.FromContextOrDefault(ctx, c.logger).Info("study set created",
		slog.String("flow", flow),
		slog.String("study_set_id", set.ID),
		slog.Int("card_count", len(set.Cards)))
	return set, nil
}
