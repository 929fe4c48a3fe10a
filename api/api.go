// Package api exposes schema validation and dataset generation over HTTP.
package api

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/TFMV/vectorgen/pkg/generator"
	"github.com/TFMV/vectorgen/pkg/schema"
	"github.com/TFMV/vectorgen/version"
)

// Server holds the Fiber app instance.
type Server struct {
	app    *fiber.App
	logger *zap.Logger
}

// generateRequest is the POST /api/v1/generate body: a schema document
// plus run options.
type generateRequest struct {
	Schema         fiber.Map `json:"schema"`
	Rows           int64     `json:"rows"`
	BatchSize      int64     `json:"batch_size"`
	MaxRowsPerFile int64     `json:"max_rows_per_file"`
	MaxFileSizeMB  int64     `json:"max_file_size_mb"`
	Seed           *int64    `json:"seed"`
	Format         string    `json:"format"`
	OutputDir      string    `json:"output_dir"`
}

// NewServer initializes the Fiber app with routes and middleware.
func NewServer(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		IdleTimeout:  10 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute, // generation runs can be long
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New())

	s := &Server{app: app, logger: logger}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "vectorgen API",
			"version": version.Version,
			"build":   version.BuildDate,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	v1 := app.Group("/api/v1")
	v1.Post("/schema/validate", s.handleValidate)
	v1.Post("/generate", s.handleGenerate)

	return s
}

// handleValidate validates the request body as a schema document and
// returns either the normalized schema or every validation issue.
func (s *Server) handleValidate(c *fiber.Ctx) error {
	parsed, err := schema.ParseJSON(c.Body())
	if err != nil {
		var vErr *schema.ValidationError
		if errors.As(err, &vErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"valid":  false,
				"issues": vErr.Issues,
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"valid":  true,
		"schema": parsed,
	})
}

// handleGenerate runs one generation synchronously and returns the
// manifest.
func (s *Server) handleGenerate(c *fiber.Ctx) error {
	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	schemaBytes, err := json.Marshal(req.Schema)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	parsed, err := schema.ParseJSON(schemaBytes)
	if err != nil {
		var vErr *schema.ValidationError
		if errors.As(err, &vErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"valid":  false,
				"issues": vErr.Issues,
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	opts := generator.DefaultRunOptions()
	if req.Rows > 0 {
		opts.TotalRows = req.Rows
	}
	if req.BatchSize > 0 {
		opts.BatchSize = req.BatchSize
	}
	if req.MaxRowsPerFile > 0 {
		opts.MaxRowsPerFile = req.MaxRowsPerFile
	}
	if req.MaxFileSizeMB > 0 {
		opts.MaxFileSizeMB = req.MaxFileSizeMB
	}
	if req.Format != "" {
		opts.Format = req.Format
	}
	if req.OutputDir != "" {
		opts.OutputDir = req.OutputDir
	}
	opts.Seed = req.Seed

	engine, err := generator.NewEngine(parsed, opts, s.logger)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	manifest, err := engine.Run(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(manifest)
}

// App exposes the underlying Fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Start runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API listening", zap.String("addr", addr))
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.app.ShutdownWithContext(shutdownCtx)
	}
}

// Shutdown stops the server immediately.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
