package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"github.com/phrazzld/memoria/internal/config"
	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/generation"
	"github.com/phrazzld/memoria/internal/platform/docx"
	"github.com/phrazzld/memoria/internal/platform/logger"
	"google.golang.org/genai"
)

// contentGenerator is the part of genai.Models used by Generator.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	logger     *slog.Logger
	models     contentGenerator
	prompt     *template.Template
	model      string
	maxRetries int
	baseDelay  time.Duration
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Generator with a genai client for cfg.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGenerator(logger, cfg, client.Models)
}

func newGenerator(logger *slog.Logger, cfg config.LLMConfig, models contentGenerator) (*Generator, error) {
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: max retries cannot be negative", generation.ErrInvalidConfig)
	}

	prompt, err := parsePrompt(defaultPrompt)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{
		logger:     logger.With(slog.String("component", "gemini_generator")),
		models:     models,
		prompt:     prompt,
		model:      cfg.ModelName,
		maxRetries: cfg.MaxRetries,
		baseDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

// GenerateCards implements generation.Generator.
func (g *Generator) GenerateCards(
	ctx context.Context,
	doc generation.Document,
	opts generation.Options,
) ([]domain.CardDraft, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if err := generation.ValidateDocument(doc); err != nil {
		return nil, err
	}

	parts, err := g.buildParts(doc, opts)
	if err != nil {
		return nil, err
	}

	text, err := g.callWithRetry(ctx, log, genai.NewContentFromParts(parts, genai.RoleUser))
	if err != nil {
		return nil, err
	}

	drafts, err := parseFlashcards(text)
	if err != nil {
		log.Warn("unparseable model output", slog.Int("output_length", len(text)))
		return nil, err
	}

	valid, err := generation.ValidDrafts(drafts)
	if err != nil {
		return nil, err
	}

	log.Info("flashcards generated",
		slog.Int("received", len(drafts)),
		slog.Int("kept", len(valid)))
	return valid, nil
}

func (g *Generator) buildParts(doc generation.Document, opts generation.Options) ([]*genai.Part, error) {
	kind, err := generation.KindOf(doc.Filename)
	if err != nil {
		return nil, err
	}

	var text string
	switch kind {
	case generation.KindText:
		if !utf8.Valid(doc.Data) {
			return nil, domain.NewValidationError("file", "is not valid UTF-8 text", domain.ErrValidation)
		}
		text = string(doc.Data)
	case generation.KindDOCX:
		if text, err = docx.ExtractText(doc.Data); err != nil {
			return nil, domain.NewValidationError("file", err.Error(), domain.ErrValidation)
		}
	}

	if kind != generation.KindPDF && strings.TrimSpace(text) == "" {
		return nil, domain.NewValidationError("file", "has no readable text", ErrNoText)
	}

	prompt, err := renderPrompt(g.prompt, opts, text)
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if kind == generation.KindPDF {
		parts = append(parts, genai.NewPartFromBytes(doc.Data, kind.MIMEType()))
	}
	return parts, nil
}

// callWithRetry sends content, retrying API errors up to maxRetries times with
// delay = baseDelay * 2^attempt * [0.5, 1). Blocked or malformed responses are
// returned at once.
func (g *Generator) callWithRetry(ctx context.Context, log *slog.Logger, content *genai.Content) (string, error) {
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	for attempt := 0; ; attempt++ {
		resp, err := g.models.GenerateContent(ctx, g.model, []*genai.Content{content}, cfg)
		if err == nil {
			return responseText(resp)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: %w", generation.ErrTransientFailure, ctxErr)
		}

		log.Warn("Gemini API call failed",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", g.maxRetries+1),
			slog.String("error", err.Error()))

		if attempt >= g.maxRetries {
			return "", fmt.Errorf("%w: giving up after %d attempts: %v",
				generation.ErrTransientFailure, attempt+1, err)
		}

		jitter := 0.5 + rand.Float64()*0.5
		delay := time.Duration(float64(g.baseDelay) * math.Pow(2, float64(attempt)) * jitter)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}
