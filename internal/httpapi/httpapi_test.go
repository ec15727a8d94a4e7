package httpapi

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"example.com/mastermind/internal/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenHandler(t *testing.T) *TokenHandler {
	t.Helper()
	hash, err := auth.HashSecret("s3cret")
	require.NoError(t, err)
	return &TokenHandler{
		Clients:  auth.Clients{"cli": hash},
		Auth:     auth.NewService([]byte("test")),
		TokenTTL: time.Hour,
	}
}

func TestTokenHandler_Issue(t *testing.T) {
	h := newTokenHandler(t)

	cases := []struct {
		name     string
		method   string
		body     string
		wantCode int
	}{
		{name: "ok", method: http.MethodPost, body: `{"clientId":"cli","clientSecret":"s3cret"}`, wantCode: http.StatusOK},
		{name: "wrong_secret", method: http.MethodPost, body: `{"clientId":"cli","clientSecret":"nope"}`, wantCode: http.StatusUnauthorized},
		{name: "unknown_client", method: http.MethodPost, body: `{"clientId":"web","clientSecret":"s3cret"}`, wantCode: http.StatusUnauthorized},
		{name: "missing_fields", method: http.MethodPost, body: `{"clientId":"cli"}`, wantCode: http.StatusBadRequest},
		{name: "bad_json", method: http.MethodPost, body: `{`, wantCode: http.StatusBadRequest},
		{name: "get", method: http.MethodGet, wantCode: http.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Issue(rec, httptest.NewRequest(tc.method, "/api/token", strings.NewReader(tc.body)))
			require.Equal(t, tc.wantCode, rec.Code, rec.Body.String())

			if tc.wantCode != http.StatusOK {
				return
			}
			var resp TokenResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.EqualValues(t, 3600, resp.ExpiresIn)

			claims, err := h.Auth.Verify(resp.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, "cli", claims.ClientID)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	svc := auth.NewService([]byte("test"))
	good, err := svc.Sign("cli", time.Hour)
	require.NoError(t, err)

	var seen string
	h := AuthMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClientIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name     string
		header   string
		wantCode int
	}{
		{name: "ok", header: "Bearer " + good, wantCode: http.StatusNoContent},
		{name: "missing", wantCode: http.StatusUnauthorized},
		{name: "not_bearer", header: "Basic abc", wantCode: http.StatusUnauthorized},
		{name: "invalid", header: "Bearer nope", wantCode: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/score", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
	assert.Equal(t, "cli", seen)
}

func TestRequestID(t *testing.T) {
	var fromCtx string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	id := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, fromCtx)

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, incoming, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := RequestID(AccessLog(log)(http.HandlerFunc(Healthz)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "/healthz", line["path"])
	assert.EqualValues(t, 200, line["status"])
	assert.Equal(t, rec.Header().Get(RequestIDHeader), line["request_id"])
}

type hijackRecorder struct {
	*httptest.ResponseRecorder
}

func (h hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return nil, nil, nil
}

func TestAccessLog_Upgrade(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, err := w.(http.Hijacker).Hijack()
		require.NoError(t, err)
	}))
	h.ServeHTTP(hijackRecorder{httptest.NewRecorder()}, httptest.NewRequest(http.MethodGet, "/ws", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.EqualValues(t, http.StatusSwitchingProtocols, line["status"])
}
