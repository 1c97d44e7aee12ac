// Package httpapi exposes the chat panel over HTTP for editor plugins and
// scripts that cannot embed the terminal front ends.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/entrhq/vaultchat/pkg/agent"
	"github.com/entrhq/vaultchat/pkg/host"
	"github.com/entrhq/vaultchat/pkg/llm"
	"github.com/entrhq/vaultchat/pkg/logging"
	"github.com/entrhq/vaultchat/pkg/types"
	"github.com/entrhq/vaultchat/pkg/vault"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("httpapi")
	if err != nil {
		debugLog.Warnf("Failed to initialize httpapi logger, using stderr fallback: %v", err)
	}
}

const maxBodyBytes = 1 << 20

// Server serves one session.
type Server struct {
	session *agent.Session
	host    *host.Local
	version string
}

// NewServer creates a server for session hosted by h. The session is
// mounted on the first Serve or Handler call.
func NewServer(session *agent.Session, h *host.Local, version string) *Server {
	return &Server{session: session, host: h, version: version}
}

// Handler returns the routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(requestLogging)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/version", s.handleVersion)

	r.Route("/chat", func(r chi.Router) {
		r.Post("/", s.handleChat)
		r.Get("/history", s.handleHistory)
		r.Get("/state", s.handleState)
	})
	r.Post("/active", s.handleActive)
	r.Post("/selection", s.handleSelection)
	return r
}

// Mount opens the chat panel on the host.
func (s *Server) Mount() error {
	_, err := s.host.Mount(s.session.ID())
	return err
}

// Serve listens on addr until ctx is canceled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	if err := s.Mount(); err != nil {
		return err
	}
	defer s.host.Unmount(s.session.ID())

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		debugLog.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

type toolActivity struct {
	Round  int    `json:"round"`
	Name   string `json:"name"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

type chatResponse struct {
	Answer   string            `json:"answer"`
	Thinking string            `json:"thinking,omitempty"`
	Tools    []toolActivity    `json:"tools"`
	Usage    *types.TokenUsage `json:"usage,omitempty"`
}

// turnRecorder collects the events of one turn.
type turnRecorder struct {
	mu   sync.Mutex
	resp chatResponse
}

func (t *turnRecorder) record(event *types.AgentEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch event.Type {
	case types.EventTypeMessage:
		if event.Role == types.RoleAssistant {
			t.resp.Answer = event.Content
		}
	case types.EventTypeThinkingContent:
		t.resp.Thinking = event.Content
	case types.EventTypeToolCall:
		t.resp.Tools = append(t.resp.Tools, toolActivity{Round: event.Round, Name: event.ToolName})
	case types.EventTypeToolResult:
		if n := len(t.resp.Tools); n > 0 {
			t.resp.Tools[n-1].Output = event.ToolOutput
		}
	case types.EventTypeToolResultError:
		if n := len(t.resp.Tools); n > 0 && event.Error != nil {
			t.resp.Tools[n-1].Error = event.Error.Error()
		}
	case types.EventTypeTokenUsage:
		if u := event.TokenUsage; u != nil {
			if t.resp.Usage == nil {
				t.resp.Usage = &types.TokenUsage{}
			}
			t.resp.Usage.PromptTokens += u.PromptTokens
			t.resp.Usage.CompletionTokens += u.CompletionTokens
			t.resp.Usage.TotalTokens += u.TotalTokens
		}
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeErr(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}

	rec := &turnRecorder{resp: chatResponse{Tools: []toolActivity{}}}
	err := s.session.SendWatched(r.Context(), req.Message, rec.record)

	if err != nil {
		status, code := classify(err)
		writeErr(w, status, code, err.Error())
		return
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	writeJSON(w, http.StatusOK, rec.resp)
}

type historyEntry struct {
	Role    types.MessageRole `json:"role"`
	Content string            `json:"content"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries := s.session.Transcript()
	out := make([]historyEntry, len(entries))
	for i, e := range entries {
		out[i] = historyEntry{Role: e.Role, Content: e.Content}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": out})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	active, _ := s.host.ActiveFile()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state":  s.session.State().String(),
		"busy":   s.session.Busy(),
		"active": active,
	})
}

type activeRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.host.Open(r.Context(), req.Path); err != nil {
		status, code := classify(err)
		writeErr(w, status, code, err.Error())
		return
	}
	active, _ := s.host.ActiveFile()
	writeJSON(w, http.StatusOK, map[string]interface{}{"active": active})
}

type selectionRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.host.Select(req.Text); err != nil {
		writeErr(w, http.StatusConflict, "no_active_note", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// classify maps an error to an HTTP status and error code.
func classify(err error) (int, string) {
	var apiErr *llm.APIError
	switch {
	case errors.Is(err, agent.ErrTurnInProgress):
		return http.StatusConflict, "turn_in_progress"
	case errors.Is(err, agent.ErrMissingAPIKey):
		return http.StatusPreconditionFailed, "missing_api_key"
	case errors.Is(err, agent.ErrNotMounted):
		return http.StatusServiceUnavailable, "not_mounted"
	case errors.Is(err, agent.ErrTooManyRounds), errors.As(err, &apiErr):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, vault.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, vault.ErrNotDocument), errors.Is(err, vault.ErrOutsideVault):
		return http.StatusBadRequest, "invalid_path"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "canceled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json", "invalid request body: "+err.Error())
		return false
	}
	return true
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, code int, errCode, message string) {
	writeJSON(w, code, map[string]apiError{"error": {Code: errCode, Message: message}})
}

// requestLogging writes one line per request to the component log.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		debugLog.Infof("%s %s %d %s request_id=%s", r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}
