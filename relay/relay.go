// Package relay provides the HTTP chat relay: it forwards a user message and a
// bounded window of conversation history to the upstream generation service,
// supplies the fixed system instruction, and returns the reply as JSON.
package relay

import (
	"context"
	"errors"
	"net"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/himi-ai-lab/chatrelay/pkg/llm"
	"github.com/himi-ai-lab/chatrelay/pkg/metrics"
)

// ServiceName is reported by the root info endpoint.
const ServiceName = "Himi AI Chatbot Server"

const requestIDKey = "requestid"

// Generator produces a reply from the upstream generation service.
type Generator interface {
	Generate(ctx context.Context, req *llm.GenerationRequest) (*llm.GenerationResponse, error)
}

// Relay is a stateless chat relay. Everything it holds is fixed at
// construction and shared read-only by concurrent requests.
type Relay struct {
	config    Config
	generator Generator
	logger    *zap.Logger
	metrics   *metrics.Metrics
	server    *fiber.App
}

// New creates a new Relay.
func New(config Config, generator Generator, logger *zap.Logger) (*Relay, error) {
	if generator == nil {
		return nil, errors.New("generator is required")
	}
	if config.Model == "" {
		return nil, errors.New("model is required")
	}
	if config.MaxTokens < 1 {
		return nil, errors.New("max tokens must be positive")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               ServiceName,
	})

	r := &Relay{
		config:    config,
		generator: generator,
		logger:    logger,
		metrics:   metrics.NewMetrics(),
		server:    app,
	}

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Post("/chat", r.handleChat)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": ServiceName, "status": "running"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(r.metrics.Handler()))

	return r, nil
}

// Run starts the relay on the configured listening address.
func (r *Relay) Run() error {
	r.logger.Info("starting chat relay",
		zap.String("listen", r.config.ListenAddr),
		zap.String("model", r.config.Model),
		zap.Int("max_tokens", r.config.MaxTokens),
	)

	return r.server.Listen(r.config.ListenAddr)
}

// RunWithListener starts the relay on an existing listener.
func (r *Relay) RunWithListener(ln net.Listener) error {
	r.logger.Info("starting chat relay", zap.String("listen", ln.Addr().String()))

	return r.server.Listener(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (r *Relay) Shutdown(ctx context.Context) error {
	return r.server.ShutdownWithContext(ctx)
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestIDKey).(string); ok {
		return id
	}
	return ""
}
