package scoring

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"example.com/mastermind/internal/auth"
	"example.com/mastermind/internal/httpapi"
	"example.com/mastermind/internal/metrics"
)

// maxBodyBytes caps REST request bodies at the WS message limit.
const maxBodyBytes = wsReadLimit

type Server struct {
	svc      *Service
	verifier auth.Verifier // nil => WS accepts anonymous clients
	metrics  *metrics.Metrics
	log      *slog.Logger
}

func NewServer(svc *Service, verifier auth.Verifier, m *metrics.Metrics, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		svc:      svc,
		verifier: verifier,
		metrics:  m,
		log:      log,
	}
}

// RegisterRoutes mounts the scoring endpoints. protect wraps the REST
// handlers (e.g. with bearer auth) and may be nil.
func (s *Server) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	if protect == nil {
		protect = func(h http.Handler) http.Handler { return h }
	}
	mux.Handle("/api/score", protect(http.HandlerFunc(s.handleScore)))
	mux.Handle("/api/validate", protect(http.HandlerFunc(s.handleValidate)))
	mux.HandleFunc("/ws", s.handleWS)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req ScoreRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err, "secret and guess must be arrays of integers")
		return
	}
	if req.Secret == nil || req.Guess == nil {
		httpapi.WriteError(w, http.StatusBadRequest, "bad_request", "secret and guess are required")
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, s.svc.Score(r.Context(), req.Secret, req.Guess))
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req ValidateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDecodeError(w, err, "sequence must be an array of integers")
		return
	}
	if req.Sequence == nil {
		httpapi.WriteError(w, http.StatusBadRequest, "bad_request", "sequence must be an array of integers")
		return
	}

	httpapi.WriteJSON(w, http.StatusOK, ValidateResponse{Valid: s.svc.Validate(req.Sequence)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeDecodeError(w http.ResponseWriter, err error, msg string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httpapi.WriteError(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body too large")
		return
	}
	httpapi.WriteError(w, http.StatusBadRequest, "bad_request", msg)
}
