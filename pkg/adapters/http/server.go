package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/gaea"
	"github.com/aretw0/gaea/internal/logging"
	"github.com/aretw0/gaea/pkg/domain"
	"github.com/aretw0/gaea/pkg/navigation"
	"github.com/aretw0/gaea/pkg/session"
)

// maxBodyBytes bounds request bodies (payloads and callback arguments).
const maxBodyBytes = 1 << 20

// Engine is the part of the Gaea engine the server reads directly.
type Engine interface {
	Inspect() ([]domain.Instance, error)
	Watch(ctx context.Context) (<-chan string, error)
}

// Server exposes mounted trees over a JSON API.
type Server struct {
	Engine  Engine
	Mounts  *session.Manager
	Streams *StreamManager

	jumps   *navigation.Recorder
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithJumps exposes the navigator's recorded jumps under GET /jumps.
func WithJumps(rec *navigation.Recorder) Option {
	return func(s *Server) {
		s.jumps = rec
	}
}

// WithMetrics serves h under GET /metrics (usually promhttp.Handler()).
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the server's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a server over engine whose mounts live in mounts.
func NewServer(engine Engine, mounts *session.Manager, opts ...Option) *Server {
	s := &Server{
		Engine:  engine,
		Mounts:  mounts,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, mounts *session.Manager, opts ...Option) http.Handler {
	return NewServer(engine, mounts, opts...).Handler()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/instances", s.ListInstances)
	r.Get("/events", s.SubscribeEvents)
	if s.jumps != nil {
		r.Get("/jumps", s.ListJumps)
	}
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/mounts", func(r chi.Router) {
		r.Get("/", s.ListMounts)
		r.Post("/", s.CreateMount)
		r.Route("/{mountID}", func(r chi.Router) {
			r.Get("/tree", s.GetTree)
			r.Delete("/", s.DeleteMount)
			r.Post("/publish/{channel}", s.Publish)
			r.Post("/invoke/{instance}/{field}", s.Invoke)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MountRequest is the body of POST /mounts.
type MountRequest struct {
	Root string `json:"root"`
}

// MountResponse describes a mount and its current tree.
type MountResponse struct {
	ID   string          `json:"id"`
	Root string          `json:"root"`
	Tree *domain.Element `json:"tree"`
}

// InvokeRequest is the body of POST /mounts/{id}/invoke/{instance}/{field}.
type InvokeRequest struct {
	Args []any `json:"args"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":           "gaea-http",
		"version":       strings.TrimSpace(gaea.Version),
		"mounts":        len(s.Mounts.List()),
		"subscriptions": s.Mounts.Subscriptions(),
	})
}

// ListInstances handles the GET /instances request.
func (s *Server) ListInstances(w http.ResponseWriter, r *http.Request) {
	instances, err := s.Engine.Inspect()
	if err != nil {
		s.fail(w, "Inspect failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, instances)
}

// ListJumps handles the GET /jumps request.
func (s *Server) ListJumps(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.jumps.Jumps())
}

// ListMounts handles the GET /mounts request.
func (s *Server) ListMounts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Mounts.List())
}

// CreateMount handles the POST /mounts request.
func (s *Server) CreateMount(w http.ResponseWriter, r *http.Request) {
	var body MountRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil || body.Root == "" {
		http.Error(w, "Invalid request body: root is required", http.StatusBadRequest)
		return
	}

	root, err := s.Mounts.Open(r.Context(), body.Root)
	if err != nil {
		s.fail(w, "Mount failed", err)
		return
	}

	var resp MountResponse
	err = root.View(r.Context(), func(tree *domain.Element) error {
		resp = MountResponse{ID: root.ID, Root: root.Key, Tree: tree}
		return s.writeJSON(w, http.StatusCreated, resp)
	})
	if err != nil {
		s.logger.Error("Mount response failed", "err", err)
	}
}

// GetTree handles the GET /mounts/{id}/tree request.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "mountID")
	err := s.Mounts.WithRoot(r.Context(), id, func(ctx context.Context, root *gaea.Root) error {
		return root.View(ctx, func(tree *domain.Element) error {
			return s.writeJSON(w, http.StatusOK, MountResponse{ID: root.ID, Root: root.Key, Tree: tree})
		})
	})
	if err != nil {
		s.fail(w, "Tree failed", err)
	}
}

// DeleteMount handles the DELETE /mounts/{id} request.
func (s *Server) DeleteMount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "mountID")
	if err := s.Mounts.Close(r.Context(), id); err != nil {
		s.fail(w, "Unmount failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Publish handles the POST /mounts/{id}/publish/{channel} request.
// The body, if any, is the JSON payload handed to subscribers.
func (s *Server) Publish(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "mountID")
	channel := chi.URLParam(r, "channel")

	payload, err := decodeOptional(r.Body)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.afterUpdate(w, r, id, func(ctx context.Context, root *gaea.Root) error {
		s.logger.Debug("Publish", "mount_id", id, "channel", channel)
		return root.Publish(ctx, channel, payload)
	})
}

// Invoke handles the POST /mounts/{id}/invoke/{instance}/{field} request.
func (s *Server) Invoke(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "mountID")
	instance := chi.URLParam(r, "instance")
	field := chi.URLParam(r, "field")

	var body InvokeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body: expected {\"args\": [...]}", http.StatusBadRequest)
		return
	}

	s.afterUpdate(w, r, id, func(ctx context.Context, root *gaea.Root) error {
		s.logger.Debug("Invoke", "mount_id", id, "instance", instance, "field", field, "args", len(body.Args))
		return root.Invoke(ctx, instance, field, body.Args...)
	})
}

// afterUpdate runs fn on the mount, then answers with the new tree and broadcasts it.
func (s *Server) afterUpdate(w http.ResponseWriter, r *http.Request, id string, fn func(context.Context, *gaea.Root) error) {
	var snapshot []byte
	err := s.Mounts.WithRoot(r.Context(), id, func(ctx context.Context, root *gaea.Root) error {
		if err := fn(ctx, root); err != nil {
			return err
		}
		return root.View(ctx, func(tree *domain.Element) error {
			var err error
			snapshot, err = json.Marshal(MountResponse{ID: root.ID, Root: root.Key, Tree: tree})
			return err
		})
	})
	if err != nil {
		s.fail(w, "Update failed", err)
		return
	}

	s.Streams.Broadcast(id, string(snapshot))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(snapshot)
}

// Reload remounts every tree whenever the engine reports a change, until ctx is done.
// Subscribers of each mount receive the fresh tree.
func (s *Server) Reload(ctx context.Context) error {
	changes, err := s.Engine.Watch(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case key, ok := <-changes:
			if !ok {
				return nil
			}
			s.logger.Info("Instances changed, remounting", "instance", key)
			if err := s.Mounts.Refresh(ctx); err != nil {
				s.logger.Warn("Remount incomplete", "err", err)
			}
			s.broadcastAll(ctx)
		}
	}
}

// PublishAll publishes payload on channel in every mount and streams the resulting trees.
func (s *Server) PublishAll(ctx context.Context, channel string, payload any) error {
	err := s.Mounts.Broadcast(ctx, channel, payload)
	s.broadcastAll(ctx)
	return err
}

func (s *Server) broadcastAll(ctx context.Context) {
	for _, info := range s.Mounts.List() {
		err := s.Mounts.WithRoot(ctx, info.ID, func(ctx context.Context, root *gaea.Root) error {
			return root.View(ctx, func(tree *domain.Element) error {
				raw, err := json.Marshal(MountResponse{ID: root.ID, Root: root.Key, Tree: tree})
				if err != nil {
					return fmt.Errorf("encode tree: %w", err)
				}
				s.Streams.Broadcast(root.ID, string(raw))
				return nil
			})
		})
		if err != nil {
			s.logger.Debug("Skipped tree broadcast", "mount_id", info.ID, "err", err)
		}
	}
}

// SubscribeEvents handles the GET /events request (SSE).
// With mount_id it streams that mount's tree after every update; without it,
// it streams the keys of changed instances.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	var events <-chan string
	id := r.URL.Query().Get("mount_id")
	if id == "" {
		changes, err := s.Engine.Watch(r.Context())
		if err != nil {
			http.Error(w, fmt.Sprintf("Watch error: %v", err), http.StatusNotImplemented)
			return
		}
		events = changes
	} else {
		if _, err := s.Mounts.Get(id); err != nil {
			s.fail(w, "Subscribe failed", err)
			return
		}
		ch, cancel := s.Streams.Subscribe(id)
		defer cancel()
		events = ch
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
		return err
	}
	return nil
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, "err", err)
	} else {
		s.logger.Warn(msg, "err", err)
	}
	http.Error(w, fmt.Sprintf("%s: %v", msg, err), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrMountNotFound),
		errors.Is(err, domain.ErrInstanceNotFound),
		errors.Is(err, domain.ErrCallbackNotFound),
		errors.Is(err, domain.ErrUnmounted):
		return http.StatusNotFound
	case errors.Is(err, session.ErrTooManyMounts):
		return http.StatusTooManyRequests
	case errors.Is(err, domain.ErrComponentNotRegistered),
		errors.Is(err, domain.ErrCycle),
		errors.Is(err, domain.ErrDuplicateInstance):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// decodeOptional reads a JSON value, returning nil for an empty body.
func decodeOptional(body io.Reader) (any, error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
