package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/gaea"
	"github.com/aretw0/gaea/internal/logging"
	"github.com/aretw0/gaea/pkg/domain"
	"github.com/aretw0/gaea/pkg/navigation"
	"github.com/aretw0/gaea/pkg/session"
)

const (
	instancesURI    = "gaea://instances"
	mountTreePrefix = "gaea://mounts/"
)

// MountResult describes a mount and its rendered tree.
type MountResult struct {
	ID   string          `json:"id" jsonschema_description:"Mount ID used by the other tools"`
	Root string          `json:"root" jsonschema_description:"Key of the root instance"`
	Tree json.RawMessage `json:"tree" jsonschema_description:"Rendered element tree"`
}

// Engine is the part of the Gaea engine the MCP server reads directly.
type Engine interface {
	Inspect() ([]domain.Instance, error)
}

// Server wraps the mount manager and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mounts    *session.Manager
	jumps     *navigation.Recorder
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithJumps adds the list_jumps tool backed by rec.
func WithJumps(rec *navigation.Recorder) Option {
	return func(s *Server) {
		s.jumps = rec
	}
}

// WithLogger sets the server's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, mounts *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		mounts: mounts,
		logger: logging.NewNop(),
		mcpServer: server.NewMCPServer("gaea-mcp", strings.TrimSpace(gaea.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type mountArgs struct {
	Root string `json:"root"`
}

type treeArgs struct {
	MountID string `json:"mount_id"`
}

type publishArgs struct {
	MountID string `json:"mount_id"`
	Channel string `json:"channel"`
	Payload string `json:"payload"`
}

type invokeArgs struct {
	MountID  string `json:"mount_id"`
	Instance string `json:"instance"`
	Field    string `json:"field"`
	Args     string `json:"args"`
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("mount",
		mcp.WithDescription("Mount the instance tree rooted at the given key in preview mode and render it."),
		mcp.WithString("root", mcp.Required(), mcp.Description("Key of the root instance")),
	), mcp.NewStructuredToolHandler(s.handleMount))

	s.mcpServer.AddTool(mcp.NewTool("render_tree",
		mcp.WithDescription("Return the current rendered tree of a mount."),
		mcp.WithString("mount_id", mcp.Required(), mcp.Description("Mount ID returned by the mount tool")),
	), mcp.NewStructuredToolHandler(s.handleRenderTree))

	s.mcpServer.AddTool(mcp.NewTool("publish",
		mcp.WithDescription("Publish a message on a channel of a mount's event bus, then return the updated tree."),
		mcp.WithString("mount_id", mcp.Required(), mcp.Description("Mount ID")),
		mcp.WithString("channel", mcp.Required(), mcp.Description("Channel name")),
		mcp.WithString("payload", mcp.Description("JSON payload (optional)")),
	), mcp.NewStructuredToolHandler(s.handlePublish))

	s.mcpServer.AddTool(mcp.NewTool("invoke",
		mcp.WithDescription("Call a callback prop of a mounted instance (e.g. a button's onClick), then return the updated tree."),
		mcp.WithString("mount_id", mcp.Required(), mcp.Description("Mount ID")),
		mcp.WithString("instance", mcp.Required(), mcp.Description("Instance key")),
		mcp.WithString("field", mcp.Required(), mcp.Description("Callback prop name")),
		mcp.WithString("args", mcp.Description("JSON array of positional arguments (optional)")),
	), mcp.NewStructuredToolHandler(s.handleInvoke))

	s.mcpServer.AddTool(mcp.NewTool("unmount",
		mcp.WithDescription("Tear a mount down."),
		mcp.WithString("mount_id", mcp.Required(), mcp.Description("Mount ID")),
	), s.handleUnmount)

	s.mcpServer.AddTool(mcp.NewTool("list_instances",
		mcp.WithDescription("List every instance definition in the store."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := s.instancesJSON()
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(raw)), nil
	})

	if s.jumps != nil {
		s.mcpServer.AddTool(mcp.NewTool("list_jumps",
			mcp.WithDescription("List the navigations requested by jump actions, oldest first."),
		), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			raw, _ := json.Marshal(s.jumps.Jumps())
			return mcp.NewToolResultText(string(raw)), nil
		})
	}
}

func (s *Server) handleMount(ctx context.Context, _ mcp.CallToolRequest, args mountArgs) (MountResult, error) {
	if args.Root == "" {
		return MountResult{}, fmt.Errorf("root is required")
	}
	root, err := s.mounts.Open(ctx, args.Root)
	if err != nil {
		return MountResult{}, fmt.Errorf("mount failed: %w", err)
	}
	return snapshot(ctx, root)
}

func (s *Server) handleRenderTree(ctx context.Context, _ mcp.CallToolRequest, args treeArgs) (MountResult, error) {
	var res MountResult
	err := s.mounts.WithRoot(ctx, args.MountID, func(ctx context.Context, root *gaea.Root) error {
		var err error
		res, err = snapshot(ctx, root)
		return err
	})
	return res, err
}

func (s *Server) handlePublish(ctx context.Context, _ mcp.CallToolRequest, args publishArgs) (MountResult, error) {
	var payload any
	if args.Payload != "" {
		if err := json.Unmarshal([]byte(args.Payload), &payload); err != nil {
			return MountResult{}, fmt.Errorf("payload is not valid JSON: %w", err)
		}
	}
	return s.update(ctx, args.MountID, func(ctx context.Context, root *gaea.Root) error {
		return root.Publish(ctx, args.Channel, payload)
	})
}

func (s *Server) handleInvoke(ctx context.Context, _ mcp.CallToolRequest, args invokeArgs) (MountResult, error) {
	var values []any
	if args.Args != "" {
		if err := json.Unmarshal([]byte(args.Args), &values); err != nil {
			return MountResult{}, fmt.Errorf("args must be a JSON array: %w", err)
		}
	}
	return s.update(ctx, args.MountID, func(ctx context.Context, root *gaea.Root) error {
		return root.Invoke(ctx, args.Instance, args.Field, values...)
	})
}

func (s *Server) handleUnmount(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("mount_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.mounts.Close(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unmount failed: %v", err)), nil
	}
	return mcp.NewToolResultText("unmounted " + id), nil
}

func (s *Server) update(ctx context.Context, id string, fn func(context.Context, *gaea.Root) error) (MountResult, error) {
	var res MountResult
	err := s.mounts.WithRoot(ctx, id, func(ctx context.Context, root *gaea.Root) error {
		if err := fn(ctx, root); err != nil {
			return err
		}
		var err error
		res, err = snapshot(ctx, root)
		return err
	})
	if err != nil {
		s.logger.Warn("MCP update failed", "mount_id", id, "err", err)
	}
	return res, err
}

// snapshot serializes the tree while no update can run.
func snapshot(ctx context.Context, root *gaea.Root) (MountResult, error) {
	res := MountResult{ID: root.ID, Root: root.Key}
	err := root.View(ctx, func(tree *domain.Element) error {
		var err error
		res.Tree, err = json.Marshal(tree)
		return err
	})
	return res, err
}

func (s *Server) instancesJSON() ([]byte, error) {
	instances, err := s.engine.Inspect()
	if err != nil {
		return nil, fmt.Errorf("inspect failed: %w", err)
	}
	return json.Marshal(instances)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(instancesURI, "Instance Definitions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		raw, err := s.instancesJSON()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: instancesURI, MIMEType: "application/json", Text: string(raw)},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(mountTreePrefix+"{id}/tree", "Mounted Tree",
		mcp.WithTemplateMIMEType("application/json"),
	), s.readMountTree)
}

func (s *Server) readMountTree(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	id := strings.TrimSuffix(strings.TrimPrefix(uri, mountTreePrefix), "/tree")
	res, err := s.handleRenderTree(ctx, mcp.CallToolRequest{}, treeArgs{MountID: id})
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(res.Tree)},
	}, nil
}
