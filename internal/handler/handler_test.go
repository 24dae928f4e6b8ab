package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hpn/hpn-quill/internal/domain"
	"github.com/hpn/hpn-quill/internal/editor"
	"github.com/hpn/hpn-quill/internal/session"
	"github.com/hpn/hpn-quill/internal/workflow"
	"github.com/hpn/hpn-quill/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeContinuer struct {
	reply    string
	err      error
	calls    int
	lastText string
	lastProv domain.ProviderID
}

func (f *fakeContinuer) ContinueWriting(_ context.Context, text string, provider domain.ProviderID) (string, error) {
	f.calls++
	f.lastText = text
	f.lastProv = provider
	return f.reply, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T, fc *fakeContinuer) (*gin.Engine, *workspace.Workspace) {
	t.Helper()
	ws := workspace.New(fc, editor.NewBuffer(""),
		workspace.WithBridge(session.NewBridge(session.NewMemoryStore(), session.WithBridgeLogger(discardLogger()))),
		workspace.WithLogger(discardLogger()),
	)
	ws.Start(context.Background())
	router := NewRouter(RouterConfig{
		Continuation: NewContinuationHandler(fc, WithLogger(discardLogger())),
		Session:      NewSessionHandler(ws, discardLogger()),
		Logger:       discardLogger(),
	})
	return router, ws
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHandleContinue_Success(t *testing.T) {
	fc := &fakeContinuer{reply: " and the stars shone brightly."}
	router, _ := newTestRouter(t, fc)

	w := doJSON(t, router, http.MethodPost, "/api/continue", ContinueRequest{Text: "The sky was clear"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, " and the stars shone brightly.", decode[ContinueResponse](t, w).Continuation)
	assert.Equal(t, domain.ProviderOpenAI, fc.lastProv)
	assert.Equal(t, "The sky was clear", fc.lastText)
}

func TestHandleContinue_ErrorMapping(t *testing.T) {
	tests := []struct {
		kind       domain.ErrorKind
		wantStatus int
		wantLabel  string
	}{
		{domain.KindEmptyInput, http.StatusBadRequest, "empty_input"},
		{domain.KindMissingCredential, http.StatusUnauthorized, "missing_credential"},
		{domain.KindQuotaExceeded, http.StatusPaymentRequired, "quota_exceeded"},
		{domain.KindRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{domain.KindEmptyResponse, http.StatusBadGateway, "empty_response"},
		{domain.KindGenerationFailed, http.StatusBadGateway, "generation_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.wantLabel, func(t *testing.T) {
			fc := &fakeContinuer{err: domain.NewProviderError(domain.ProviderGemini, tt.kind, "detail for "+tt.wantLabel, nil)}
			router, _ := newTestRouter(t, fc)

			w := doJSON(t, router, http.MethodPost, "/api/continue", ContinueRequest{Text: "x", Provider: "gemini"})

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode[ErrorResponse](t, w)
			assert.Equal(t, tt.wantLabel, body.Error)
			assert.Equal(t, "detail for "+tt.wantLabel, body.Message)
		})
	}
}

func TestHandleContinue_UnsupportedProvider(t *testing.T) {
	fc := &fakeContinuer{reply: "x"}
	router, _ := newTestRouter(t, fc)

	w := doJSON(t, router, http.MethodPost, "/api/continue", ContinueRequest{Text: "x", Provider: "mistral"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unsupported_provider", decode[ErrorResponse](t, w).Error)
	assert.Zero(t, fc.calls)
}

func TestHandleContinue_MalformedBody(t *testing.T) {
	router, _ := newTestRouter(t, &fakeContinuer{})
	req := httptest.NewRequest(http.MethodPost, "/api/continue", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, labelInvalidRequest, decode[ErrorResponse](t, w).Error)
}

func TestSessionFlow(t *testing.T) {
	fc := &fakeContinuer{reply: ", world."}
	router, _ := newTestRouter(t, fc)

	w := doJSON(t, router, http.MethodPut, "/api/session/content", ContentRequest{Text: "Hello"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/session/provider", ProviderRequest{Provider: "anthropic"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/session/continue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cont struct {
		Continuation string `json:"continuation"`
		Session      struct {
			State          string `json:"state"`
			EditorContent  string `json:"editor_content"`
			ActiveProvider string `json:"active_provider"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cont))
	assert.Equal(t, ", world.", cont.Continuation)
	assert.Equal(t, "idle", cont.Session.State)
	assert.Equal(t, "Hello, world.", cont.Session.EditorContent)
	assert.Equal(t, "anthropic", cont.Session.ActiveProvider)
	assert.Equal(t, domain.ProviderAnthropic, fc.lastProv)

	w = doJSON(t, router, http.MethodPost, "/api/session/drafts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/session/drafts/0/load", nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[map[string]any](t, w)
	assert.Equal(t, "Hello, world.", snap["editor_content"])
	assert.EqualValues(t, 0, snap["active_draft_index"])

	w = doJSON(t, router, http.MethodPost, "/api/session/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[map[string]any](t, w)["active_draft_index"])

	w = doJSON(t, router, http.MethodDelete, "/api/session/drafts/0", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[map[string]any](t, w)["saved_drafts"])
}

func TestSession_FailureThenDismiss(t *testing.T) {
	fc := &fakeContinuer{err: domain.NewProviderError(domain.ProviderOpenAI, domain.KindRateLimited, "OpenAI rate limit reached.", nil)}
	router, ws := newTestRouter(t, fc)
	ws.Edit("text")

	w := doJSON(t, router, http.MethodPost, "/api/session/continue", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, workflow.Failed, ws.Snapshot().State)

	w = doJSON(t, router, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OpenAI rate limit reached.", decode[map[string]any](t, w)["last_error"])

	w = doJSON(t, router, http.MethodPost, "/api/session/dismiss", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "idle", decode[map[string]any](t, w)["state"])

	w = doJSON(t, router, http.MethodPost, "/api/session/dismiss", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSession_BlankRequests(t *testing.T) {
	fc := &fakeContinuer{reply: "x"}
	router, _ := newTestRouter(t, fc)

	w := doJSON(t, router, http.MethodPost, "/api/session/continue", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "empty_input", decode[ErrorResponse](t, w).Error)

	w = doJSON(t, router, http.MethodPost, "/api/session/drafts", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, fc.calls)
}

func TestSession_DraftIndexErrors(t *testing.T) {
	router, _ := newTestRouter(t, &fakeContinuer{})

	w := doJSON(t, router, http.MethodPost, "/api/session/drafts/3/load", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, labelDraftNotFound, decode[ErrorResponse](t, w).Error)

	w = doJSON(t, router, http.MethodDelete, "/api/session/drafts/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSession_InvalidProvider(t *testing.T) {
	router, ws := newTestRouter(t, &fakeContinuer{})

	w := doJSON(t, router, http.MethodPut, "/api/session/provider", ProviderRequest{Provider: "mistral"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.ProviderOpenAI, ws.Snapshot().ActiveProvider)
}

func TestProvidersAndHealth(t *testing.T) {
	router, _ := newTestRouter(t, &fakeContinuer{})

	w := doJSON(t, router, http.MethodGet, "/api/providers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Providers []ProviderInfo `json:"providers"`
	}](t, w)
	require.Len(t, body.Providers, 3)
	assert.True(t, body.Providers[0].Default)

	w = doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "degraded", decode[map[string]any](t, w)["status"])
}

func TestRequestIDMiddleware(t *testing.T) {
	router, _ := newTestRouter(t, &fakeContinuer{})

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	_, err := uuid.Parse(w.Header().Get(HeaderRequestID))
	assert.NoError(t, err)

	inbound := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, inbound)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, inbound, w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(HeaderRequestID))
}

func TestCORSMiddleware(t *testing.T) {
	engine := gin.New()
	engine.Use(CORSMiddleware([]string{"https://app.example"}))
	engine.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddleware(t *testing.T) {
	engine := gin.New()
	engine.Use(RecoveryMiddleware(discardLogger()))
	engine.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, labelInternal, decode[ErrorResponse](t, w).Error)
}

func TestClassify_Unknown(t *testing.T) {
	status, body := classify(errors.New("database exploded"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, body.Message, "database")
}

// slowContinuer fails the way a transport does once its context is done.
type slowContinuer struct {
	reply string
	delay time.Duration
}

func (s slowContinuer) ContinueWriting(ctx context.Context, _ string, _ domain.ProviderID) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(s.delay):
		return s.reply, nil
	}
}

func TestContinue_ClientCancelRunsToCompletion(t *testing.T) {
	sc := slowContinuer{reply: " and more.", delay: 50 * time.Millisecond}
	ws := workspace.New(sc, editor.NewBuffer(""), workspace.WithLogger(discardLogger()))
	router := NewRouter(RouterConfig{
		Continuation: NewContinuationHandler(sc, WithLogger(discardLogger())),
		Session:      NewSessionHandler(ws, discardLogger()),
		Logger:       discardLogger(),
	})
	ws.Edit("Hello")

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	send := func(path string, body any) *httptest.ResponseRecorder {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw)).WithContext(cancelled)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := send("/api/session/continue", struct{}{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	snap := ws.Snapshot()
	assert.Equal(t, workflow.Idle, snap.State)
	assert.Nil(t, snap.LastError)
	assert.Equal(t, "Hello and more.", snap.EditorContent)

	w = send("/api/continue", ContinueRequest{Text: "Hello"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, " and more.", decode[ContinueResponse](t, w).Continuation)
}
