package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/phrazzld/memoria/internal/api/shared"
	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/generation"
	"github.com/phrazzld/memoria/internal/platform/logger"
)

// uploadField is the multipart field holding the document.
const uploadField = "file"

// GenerateHandler serves POST /upload-generate. Failures are answered with
// generation.ErrorResponse so clients can show the detail verbatim.
type GenerateHandler struct {
	generator generation.Generator
	maxBytes  int64
}

// NewGenerateHandler creates a GenerateHandler accepting uploads of at most
// maxBytes.
func NewGenerateHandler(generator generation.Generator, maxBytes int64) *GenerateHandler {
	return &GenerateHandler{generator: generator, maxBytes: maxBytes}
}

// Generate reads the uploaded document and the generation headers, and
// responds with the generated flashcards.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	sess, ok := shared.SessionFromContext(r.Context())
	if !ok {
		respondWithDetail(w, r, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if r.ContentLength > h.maxBytes {
		respondWithDetail(w, r, http.StatusRequestEntityTooLarge, "File is too large", nil)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithDetail(w, r, http.StatusRequestEntityTooLarge, "File is too large", err)
			return
		}
		respondWithDetail(w, r, http.StatusBadRequest, "A file must be uploaded in the \"file\" field", err)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		respondWithDetail(w, r, http.StatusBadRequest, "Failed to read uploaded file", err)
		return
	}

	doc := generation.Document{Filename: header.Filename, Data: data}
	opts := generation.OptionsFromHeaders(r.Header)

	log.Info("generating flashcards",
		slog.String("user_id", sess.UserID),
		slog.String("filename", header.Filename),
		slog.Int("size", len(data)),
		slog.String("language", opts.Language),
		slog.Int("detail_level", opts.DetailLevel))

	cards, err := h.generator.GenerateCards(r.Context(), doc, opts)
	if err != nil {
		respondWithDetail(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if cards == nil {
		cards = []domain.CardDraft{}
	}

	log.Info("flashcards generated", slog.Int("count", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusOK, generation.Response{Flashcards: cards})
}

func respondWithDetail(w http.ResponseWriter, r *http.Request, status int, detail string, err error) {
	shared.LogError(r, status, detail, err)
	shared.RespondWithJSON(w, r, status, generation.ErrorResponse{Detail: detail})
}
