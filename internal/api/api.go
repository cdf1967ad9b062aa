// Package api serves the messaging HTTP API over the dev server store.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/matheus3301/fleetchat/internal/conversation"
	"github.com/matheus3301/fleetchat/internal/model"
	"github.com/matheus3301/fleetchat/internal/store"
	"go.uber.org/zap"
)

// UserHeader carries the caller's user id. Authentication is out of scope for
// the dev server; the header is trusted as is.
const UserHeader = "X-User-Id"

// Store is the persistence the handlers need.
type Store interface {
	CreateMessage(ctx context.Context, nm store.NewMessage) (*store.Message, error)
	PullInbox(ctx context.Context, userID string, limit int) ([]store.Message, error)
	History(ctx context.Context, conversationID string, page, pageSize int) ([]store.Message, error)
	GetGroup(ctx context.Context, id string) (*model.Group, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	ListContacts(ctx context.Context, ownerID string) ([]model.Contact, error)
}

// Handler serves the messaging routes.
type Handler struct {
	store  Store
	logger *zap.Logger
	echo   bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithEcho delivers each sent message to the sender's own inbox as well.
func WithEcho(on bool) Option {
	return func(h *Handler) { h.echo = on }
}

// New creates a Handler.
func New(s Store, logger *zap.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{store: s, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router returns the full HTTP handler with middleware.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Group(func(r chi.Router) {
		r.Use(identify)
		h.RegisterRoutes(r)
	})
	return r
}

// RegisterRoutes registers the messaging routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/messaging/send", h.handleSend)
	r.Post("/messaging/pull", h.handlePull)
	r.Post("/messaging/conversation/{conversationID}/history", h.handleHistory)
	r.Get("/UserGroups/{groupID}", h.handleGroup)
	r.Get("/contacts/all", h.handleContacts)
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("user_id", r.Header.Get(UserHeader)),
		)
	})
}

type userKey struct{}

// identify stores the caller id from the header, or the userId query
// parameter, in the request context. Handlers reject anonymous callers.
func identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := strings.TrimSpace(r.Header.Get(UserHeader))
		if uid == "" {
			uid = strings.TrimSpace(r.URL.Query().Get("userId"))
		}
		if err := conversation.ValidateParticipantID(uid); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(ctx context.Context) string {
	uid, _ := ctx.Value(userKey{}).(string)
	return uid
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

// decodeBody decodes a JSON body into dst. An empty body leaves dst as is.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
