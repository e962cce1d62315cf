// Package web exposes the conversation over HTTP and websocket for chat
// UIs: a JSON API mirroring the controller's operations plus a live event
// stream of conversation snapshots.
package web

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/lawbot-ai/go-lawbot/pkg/conversation"
	"github.com/lawbot-ai/go-lawbot/pkg/hub"
)

// Server is the conversation API server.
type Server struct {
	app    *fiber.App
	port   string
	ctrl   *conversation.Controller
	logger *slog.Logger

	// Hub for websocket broadcast (thread-safe!)
	events *hub.Hub
}

// NewServer wires the controller behind the HTTP API. The controller's
// change notifications are broadcast to every websocket client as full
// snapshots.
func NewServer(port string, ctrl *conversation.Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		port:   port,
		ctrl:   ctrl,
		logger: logger.With("component", "web"),
		events: hub.New("events", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "lawbot",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static files
	app.Static("/", "./web")

	// API routes
	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/messages", s.handleMessages)
	api.Get("/settings", s.handleGetSettings)
	api.Patch("/settings", s.handlePatchSettings)
	api.Get("/voices", s.handleVoices)
	api.Post("/send", s.handleSend)
	api.Post("/draft", s.handleDraft)
	api.Post("/payload", s.handlePayload)
	api.Post("/mic/toggle", s.handleMicToggle)
	api.Post("/mic/insert", s.handleMicInsert)
	api.Post("/audio/toggle", s.handleAudioToggle)
	api.Post("/messages/:id/play", s.handlePlayMessage)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	ctrl.OnChange(s.broadcastSnapshot)

	s.app = app
	return s
}

// Start runs the event hub and listens on the configured port. Blocks
// until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("listening", "port", s.port)
	go s.events.Run()
	return s.app.Listen(":" + s.port)
}

// Shutdown gracefully stops the web server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// broadcastSnapshot pushes the full conversation view to every websocket
// client after each state change.
func (s *Server) broadcastSnapshot() {
	if err := s.events.BroadcastJSON(s.ctrl.Snapshot()); err != nil {
		s.logger.Warn("snapshot broadcast failed", "error", err)
	}
}

// handleEventsWS streams conversation snapshots to one client.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	// Send the current view immediately so the client does not wait for
	// the next change.
	if err := c.WriteJSON(s.ctrl.Snapshot()); err != nil {
		c.Close()
		return
	}
	hub.NewClient(s.events, c).Run()
}
