// Package httpapi serves the small public HTTP surface: health and the
// shareable invite preview.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ferdousbhai/echo/internal/convert"
	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// InvitePreviewer returns the public view of an invite, or nil.
type InvitePreviewer interface {
	GetInviteInfo(ctx context.Context, code string) (*model.InviteInfo, error)
}

// Pinger reports storage readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the dependencies of the HTTP routes.
type Handler struct {
	invites InvitePreviewer
	db      Pinger
	log     *zap.Logger
}

// NewRouter builds the chi router. db may be nil, in which case /healthz only
// reports liveness.
func NewRouter(invites InvitePreviewer, db Pinger, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{invites: invites, db: db, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/healthz", h.Health)
	r.Get("/invites/{code}", h.InvitePreview)
	return r
}

// RequestLogger logs one line per request with zap.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				log.Info("http",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Duration("dur", time.Since(start)),
					zap.String("reqID", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// Health answers liveness, and readiness when a database is wired.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.log.Warn("health: db ping", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// InvitePreview renders the public preview of an invite code.
func (h *Handler) InvitePreview(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	info, err := h.invites.GetInviteInfo(r.Context(), code)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if info == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "invite not found or no longer valid"})
		return
	}
	writeJSON(w, http.StatusOK, convert.ToInviteInfo(info))
}

type errorBody struct {
	Error string `json:"error"`
}

var statusOf = []struct {
	err  error
	code int
}{
	{errs.ErrUnauthenticated, http.StatusUnauthorized},
	{errs.ErrForbidden, http.StatusForbidden},
	{errs.ErrNotFound, http.StatusNotFound},
	{errs.ErrInvalidState, http.StatusConflict},
	{errs.ErrInvalidArgument, http.StatusBadRequest},
	{errs.ErrAlreadyExists, http.StatusConflict},
	{errs.ErrRateLimited, http.StatusTooManyRequests},
}

// httpStatus maps service errors to HTTP codes; unknown errors are 500.
func httpStatus(err error) int {
	for _, s := range statusOf {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	code := httpStatus(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		h.log.Error("http handler", zap.Error(err))
		msg = "internal"
	}
	writeJSON(w, code, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
