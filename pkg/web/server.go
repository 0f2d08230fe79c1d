// Package web serves a live viewer for simulated drawings.
//
// A Server is a render.Display: every artifact it is shown becomes the
// current drawing, served over HTTP and pushed to open browser tabs through
// a websocket hub.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/zeebo/xxh3"

	"github.com/teslashibe/go-finch/pkg/hub"
	"github.com/teslashibe/go-finch/pkg/render"
)

// Update is the JSON document served at /api/artifact and pushed over
// /ws/artifact.
type Update struct {
	Version  uint64          `json:"version"`
	Artifact render.Artifact `json:"artifact"`
	SVG      string          `json:"svg"`

	// ETag identifies the SVG content for conditional requests.
	ETag string `json:"etag"`
}

// Option configures a Server.
type Option func(*Server)

// WithRasterizer enables /drawing.png.
func WithRasterizer(r render.Rasterizer) Option {
	return func(s *Server) {
		s.rasterizer = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server is the drawing viewer.
type Server struct {
	app        *fiber.App
	port       string
	rasterizer render.Rasterizer
	logger     *slog.Logger
	hub        *hub.Hub
	metrics    *metrics

	mu      sync.RWMutex
	current *Update
}

// NewServer creates a viewer listening on port.
func NewServer(port string, opts ...Option) *Server {
	s := &Server{
		port:   port,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "viewer")
	s.hub = hub.New("artifact", s.logger)
	s.metrics = newMetrics(s.hub)

	app := fiber.New(fiber.Config{
		AppName:               "Finch Viewer",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	app.Get("/", s.handleIndex)
	app.Get("/drawing.svg", s.handleSVG)
	app.Get("/drawing.png", s.handlePNG)

	api := app.Group("/api")
	api.Get("/artifact", s.handleArtifact)
	app.Get("/metrics", s.metrics.handler())

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/artifact", websocket.New(s.handleArtifactWS))

	s.app = app
	return s
}

// Show stores a as the current drawing and pushes it to connected viewers.
// Concurrent calls reach the hub in version order.
func (s *Server) Show(ctx context.Context, a render.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	svg := render.SVG(a)

	s.mu.Lock()
	defer s.mu.Unlock()
	var version uint64 = 1
	if s.current != nil {
		version = s.current.Version + 1
	}
	update := &Update{
		Version:  version,
		Artifact: a,
		SVG:      string(svg),
		ETag:     `"` + strconv.FormatUint(xxh3.Hash(svg), 16) + `"`,
	}
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to encode drawing: %w", err)
	}
	s.current = update
	// Broadcast never blocks, so it is safe under the lock.
	s.hub.Broadcast(hub.NewJSONMessage(data))

	s.metrics.updates.Inc()
	s.metrics.segments.Set(float64(len(a.Segments)))
	s.metrics.drawn.Set(float64(a.DrawnCount()))
	s.logger.Debug("drawing updated", "version", version, "segments", len(a.Segments), "clients", s.hub.ClientCount())
	return nil
}

// Current returns the latest update, or nil before the first Show.
func (s *Server) Current() *Update {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Start listens on the configured port and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", s.port, err)
	}
	s.logger.Info("viewer listening", "url", "http://localhost:"+s.port)
	return s.Serve(ctx, ln)
}

// Serve runs the viewer on ln until ctx is cancelled or the listener fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.hub.Run(ctx)

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			if err := s.app.Shutdown(); err != nil {
				s.logger.Warn("viewer shutdown failed", "error", err)
			}
		case <-stopped:
		}
	}()

	return s.app.Listener(ln)
}

// StartAsync starts the viewer in a goroutine.
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.logger.Error("viewer stopped", "error", err)
		}
	}()
}
