package progress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkratz/huntboard/go/internal/models"
)

// stubApp returns canned results so handler tests only exercise the HTTP
// mapping.
type stubApp struct {
	start  *StartResult
	tip    *TipResult
	answer *AnswerResult
	err    error
}

func (s *stubApp) Start(context.Context, uuid.UUID, uuid.UUID) (*StartResult, error) {
	return s.start, s.err
}

func (s *stubApp) Tip(context.Context, uuid.UUID, uuid.UUID, int) (*TipResult, error) {
	return s.tip, s.err
}

func (s *stubApp) Answer(context.Context, uuid.UUID, uuid.UUID, string) (*AnswerResult, error) {
	return s.answer, s.err
}

func (s *stubApp) Complete(context.Context, uuid.UUID, uuid.UUID, models.CompletionReason) error {
	return s.err
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func pairBody() string {
	return `{"team_id":"` + uuid.NewString() + `","question_id":"` + uuid.NewString() + `"}`
}

func TestHandleAnswerKeepsZeroAttemptsRemaining(t *testing.T) {
	h := NewHandler(&stubApp{answer: &AnswerResult{Correct: false, AttemptsRemaining: 0}})

	rec := postJSON(t, h.HandleAnswer, `{"team_id":"`+uuid.NewString()+`","question_id":"`+uuid.NewString()+`","text":"wrong"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	// The third wrong answer reports zero attempts left; the field must not
	// vanish from the payload just because the value is zero.
	remaining, ok := body["attempts_remaining"]
	require.True(t, ok, "attempts_remaining missing from response body")
	assert.Equal(t, float64(0), remaining)
	assert.Equal(t, false, body["correct"])
}

func TestHandleErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidTipNumber, http.StatusBadRequest},
		{ErrEventNotStarted, http.StatusConflict},
		{ErrAlreadyAnswered, http.StatusConflict},
		{ErrMaxAttemptsReached, http.StatusConflict},
		{ErrAlreadyCompleted, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := NewHandler(&stubApp{err: tt.err})
			rec := postJSON(t, h.HandleStart, pairBody())
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandleCompleteRejectsUnknownReason(t *testing.T) {
	h := NewHandler(&stubApp{})

	rec := postJSON(t, h.HandleComplete, `{"team_id":"`+uuid.NewString()+`","question_id":"`+uuid.NewString()+`","reason":"rage_quit"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRejectsNonPost(t *testing.T) {
	h := NewHandler(&stubApp{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.HandleStart(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
