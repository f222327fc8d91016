package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/memoria/internal/api/shared"
	"github.com/phrazzld/memoria/internal/domain"
	"github.com/phrazzld/memoria/internal/generation"
)

type fakeGenerator struct {
	gotDoc  generation.Document
	gotOpts generation.Options
	cards   []domain.CardDraft
	err     error
}

func (f *fakeGenerator) GenerateCards(
	_ context.Context,
	doc generation.Document,
	opts generation.Options,
) ([]domain.CardDraft, error) {
	f.gotDoc = doc
	f.gotOpts = opts
	return f.cards, f.err
}

func newUploadRequest(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(uploadField, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-generate", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	sess := domain.Session{UserID: "user-1", Token: "tok"}
	return req.WithContext(shared.WithSession(req.Context(), sess))
}

func TestGenerateHandler_Success(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{cards: []domain.CardDraft{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "A2"},
	}}
	h := NewGenerateHandler(gen, 1<<20)

	req := newUploadRequest(t, "notes.pdf", []byte("%PDF-1.4"))
	req.Header.Set(generation.HeaderDetailLevel, "3")
	req.Header.Set(generation.HeaderKeywords, "photosynthesis, light")
	req.Header.Set(generation.HeaderStudyGoal, "exam")
	rr := httptest.NewRecorder()

	h.Generate(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp generation.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, gen.cards, resp.Flashcards)

	assert.Equal(t, "notes.pdf", gen.gotDoc.Filename)
	assert.Equal(t, []byte("%PDF-1.4"), gen.gotDoc.Data)
	assert.Equal(t, 3, gen.gotOpts.DetailLevel)
	assert.Equal(t, generation.DefaultLanguage, gen.gotOpts.Language)
	assert.Equal(t, "exam", gen.gotOpts.StudyGoal)
	assert.Equal(t, []string{"photosynthesis", "light"}, gen.gotOpts.KeywordList())
}

func TestGenerateHandler_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		genErr     error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "unsupported format",
			genErr:     fmt.Errorf("%w: \"notes.pdf\"", domain.ErrUnsupportedFormat),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "content blocked",
			genErr:     generation.ErrContentBlocked,
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: "The document was blocked by content safety filters",
		},
		{
			name:       "nothing usable",
			genErr:     generation.ErrGenerationFailed,
			wantStatus: http.StatusUnprocessableEntity,
			wantDetail: "No flashcards could be generated from this document",
		},
		{
			name:       "transient",
			genErr:     fmt.Errorf("%w: quota", generation.ErrTransientFailure),
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "unexpected",
			genErr:     fmt.Errorf("dial tcp 10.0.0.1:443: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "An unexpected error occurred",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := NewGenerateHandler(&fakeGenerator{err: tc.genErr}, 1<<20)
			rr := httptest.NewRecorder()
			h.Generate(rr, newUploadRequest(t, "notes.pdf", []byte("data")))

			assert.Equal(t, tc.wantStatus, rr.Code)
			var resp generation.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Detail)
			if tc.wantDetail != "" {
				assert.Equal(t, tc.wantDetail, resp.Detail)
			}
			assert.NotContains(t, resp.Detail, "10.0.0.1")
		})
	}
}

func TestGenerateHandler_RequestProblems(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{}
	h := NewGenerateHandler(gen, 16)

	t.Run("no session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload-generate", nil)
		rr := httptest.NewRecorder()
		h.Generate(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing file field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload-generate", bytes.NewBufferString("x=1"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req = req.WithContext(shared.WithSession(req.Context(), domain.Session{UserID: "u"}))
		rr := httptest.NewRecorder()
		h.Generate(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "detail")
	})

	t.Run("too large", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.Generate(rr, newUploadRequest(t, "notes.txt", bytes.Repeat([]byte("a"), 64)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	})

	assert.Empty(t, gen.gotDoc.Filename, "generator must not be called")
}
