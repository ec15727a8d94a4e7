package scoring

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"example.com/mastermind/internal/auth"
	"example.com/mastermind/internal/httpapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testVerifier struct{}

func (v testVerifier) Verify(token string) (*auth.Claims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &auth.Claims{ClientID: "cli"}, nil
}

func newTestMux(verifier auth.Verifier) *http.ServeMux {
	svc := NewService(quietLogger(), nil, Layer{Name: "memory", Cache: NewInMemoryScoreCache(0)})
	srv := NewServer(svc, verifier, nil, quietLogger())
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux, nil)
	return mux
}

func TestHandleScore(t *testing.T) {
	t.Parallel()
	mux := newTestMux(nil)

	cases := []struct {
		name     string
		method   string
		body     string
		wantCode int
		want     *Result
		wantErr  string
	}{
		{
			name:     "mixed",
			method:   http.MethodPost,
			body:     `{"secret":[1,7,9,3,7],"guess":[2,7,3,3,1]}`,
			wantCode: http.StatusOK,
			want:     &Result{Valid: true},
		},
		{
			name:     "invalid_digit_scores_zero",
			method:   http.MethodPost,
			body:     `{"secret":[0,2,3],"guess":[1,2,3]}`,
			wantCode: http.StatusOK,
			want:     &Result{Valid: false},
		},
		{
			name:     "length_mismatch_scores_zero",
			method:   http.MethodPost,
			body:     `{"secret":[1,2,3],"guess":[1,2]}`,
			wantCode: http.StatusOK,
			want:     &Result{Valid: false},
		},
		{name: "non_integer_element", method: http.MethodPost, body: `{"secret":[1,"a"],"guess":[1,2]}`, wantCode: http.StatusBadRequest, wantErr: "bad_request"},
		{name: "float_element", method: http.MethodPost, body: `{"secret":[1.5,2],"guess":[1,2]}`, wantCode: http.StatusBadRequest, wantErr: "bad_request"},
		{name: "missing_guess", method: http.MethodPost, body: `{"secret":[1,2]}`, wantCode: http.StatusBadRequest, wantErr: "bad_request"},
		{name: "bad_json", method: http.MethodPost, body: `{`, wantCode: http.StatusBadRequest, wantErr: "bad_request"},
		{name: "get", method: http.MethodGet, wantCode: http.StatusMethodNotAllowed, wantErr: "method_not_allowed"},
		{name: "body_too_large", method: http.MethodPost, body: oversizedScoreBody(), wantCode: http.StatusRequestEntityTooLarge, wantErr: "request_too_large"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tc.method, "/api/score", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			require.Equal(t, tc.wantCode, rec.Code, rec.Body.String())
			if tc.wantErr != "" {
				var e httpapi.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
				assert.Equal(t, tc.wantErr, e.Code)
				return
			}

			var got Result
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tc.want.Valid, got.Valid)
			if !got.Valid {
				assert.Zero(t, got.Strong)
				assert.Zero(t, got.Weak)
				assert.NotEmpty(t, got.Reason)
			}
		})
	}
}

// oversizedScoreBody is valid JSON whose secret alone exceeds maxBodyBytes.
func oversizedScoreBody() string {
	digits := strings.Repeat("1,", maxBodyBytes/2+1)
	return `{"secret":[` + digits + `1],"guess":[1]}`
}

func TestHandleScore_ResponseShape(t *testing.T) {
	mux := newTestMux(nil)
	req := httptest.NewRequest(http.MethodPost, "/api/score", strings.NewReader(`{"secret":[2,2,3,3],"guess":[3,3,2,2]}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"strong":0,"weak":2,"valid":true}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHandleValidate(t *testing.T) {
	mux := newTestMux(nil)

	cases := []struct {
		body     string
		wantCode int
		want     string
	}{
		{body: `{"sequence":[1,2,9]}`, wantCode: http.StatusOK, want: `{"valid":true}`},
		{body: `{"sequence":[1,2,0]}`, wantCode: http.StatusOK, want: `{"valid":false}`},
		{body: `{"sequence":[]}`, wantCode: http.StatusOK, want: `{"valid":true}`},
		{body: `{}`, wantCode: http.StatusBadRequest},
		{body: `{"sequence":[` + strings.Repeat("1,", maxBodyBytes/2+1) + `1]}`, wantCode: http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/validate", strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, tc.wantCode, rec.Code, tc.body)
		if tc.want != "" {
			assert.JSONEq(t, tc.want, rec.Body.String(), tc.body)
		}
	}
}

func TestRegisterRoutes_Protect(t *testing.T) {
	svc := NewService(quietLogger(), nil)
	srv := NewServer(svc, nil, nil, quietLogger())
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	})

	for _, path := range []string{"/api/score", "/api/validate"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}
