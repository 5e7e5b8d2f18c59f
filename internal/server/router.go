package server

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ContentHandler describes the component that answers every file request.
// It allows injecting fake handlers during tests.
type ContentHandler interface {
	Handle(fiber.Ctx) error
}

// ContentHandlerFunc adapts a function to the ContentHandler interface.
type ContentHandlerFunc func(fiber.Ctx) error

// Handle makes ContentHandlerFunc satisfy ContentHandler.
func (f ContentHandlerFunc) Handle(c fiber.Ctx) error {
	return f(c)
}

// AppOptions controls how the Fiber application should behave.
type AppOptions struct {
	Logger  *logrus.Logger
	Handler ContentHandler
	// Diagnostics 为 true 时 /-/ 前缀留给诊断路由，不再按文件处理。
	Diagnostics bool
}

const contextKeyRequestID = "_otg_request_id"

// NewApp builds a Fiber application with request-id middleware, panic recovery
// and a catch-all route delegating to the content handler.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Handler == nil {
		return nil, errors.New("content handler is required")
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		ErrorHandler:  errorHandler(opts.Logger),
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware())

	app.All("/*", func(c fiber.Ctx) error {
		if opts.Diagnostics && isDiagnosticsPath(c.Path()) {
			return c.Next()
		}
		return opts.Handler.Handle(c)
	})

	return app, nil
}

// requestContextMiddleware 为每个请求生成请求 ID，写入 Locals 与响应头。
func requestContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

// errorHandler 记录漏到 Fiber 的错误（包括 recover 捕获的 panic），并返回纯文本 500。
func errorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		logger.WithFields(logrus.Fields{
			"action":     "unhandled_error",
			"path":       c.Path(),
			"status":     status,
			"request_id": RequestID(c),
		}).WithError(err).Error("request_error")
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(status).SendString(err.Error())
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

func isDiagnosticsPath(path string) bool {
	return strings.HasPrefix(path, "/-/")
}
