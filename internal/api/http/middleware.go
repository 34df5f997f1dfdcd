package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/Raj-Randive/soar-school-management-system/internal/api/dto"
	"github.com/Raj-Randive/soar-school-management-system/internal/observability"
	apperrors "github.com/Raj-Randive/soar-school-management-system/pkg/util/errorutil"
)

// MiddlewareOptions tunes the global middleware chain.
type MiddlewareOptions struct {
	Timeout time.Duration
	// ExposeInternalErrors appends the cause of a 500 to the response.
	ExposeInternalErrors bool
	// CORSAllowOrigins is a comma separated origin list; empty disables CORS.
	CORSAllowOrigins string
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app fiber.Router, logger *zap.Logger, metrics *observability.Metrics, opts MiddlewareOptions) {
	app.Use(observability.RequestLogger(logger, metrics))
	if opts.CORSAllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:  opts.CORSAllowOrigins,
			AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
			ExposeHeaders: "Retry-After, X-RateLimit-Limit, X-RateLimit-Remaining, " + observability.RequestIDHeader,
		}))
	}
	app.Use(errorHandlingMiddleware(logger, metrics, opts.ExposeInternalErrors))
	if opts.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(opts.Timeout))
	}
}

// ErrorHandler is installed as the fiber app error handler for errors that
// escape the middleware chain.
func ErrorHandler(logger *zap.Logger, exposeInternal bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return writeError(c, logger, toDomainError(err), exposeInternal)
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics, exposeInternal bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Path()),
					zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
				err = writeError(c, logger, domainErr, exposeInternal)
			}
		}()
		return c.Next()
	}
}

func toDomainError(err error) *apperrors.DomainError {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewDomainError("TIMEOUT", "Request timed out", http.StatusGatewayTimeout, nil)
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := strings.ToUpper(strings.ReplaceAll(http.StatusText(fe.Code), " ", "_"))
		if code == "" {
			code = "HTTP_ERROR"
		}
		return apperrors.NewDomainError(code, fe.Message, fe.Code, nil)
	}
	return apperrors.ToDomainError(err)
}

func writeError(c *fiber.Ctx, logger *zap.Logger, domainErr *apperrors.DomainError, exposeInternal bool) error {
	body := dto.Envelope{
		OK:      false,
		Code:    domainErr.HTTPStatus,
		Message: domainErr.Message,
	}
	if len(domainErr.Fields) > 0 {
		body.Errors = domainErr.Fields
	}
	if len(domainErr.Details) > 0 {
		body.Data = domainErr.Details
	}
	if domainErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.Path()), zap.Error(domainErr))
		if exposeInternal && domainErr.Err != nil {
			body.Errors = []string{domainErr.Err.Error()}
		}
	}
	return c.Status(domainErr.HTTPStatus).JSON(body)
}
