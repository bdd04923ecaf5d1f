package middleware

import (
	"errors"
	"net/http"

	"github.com/Astemirdum/library-management/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

type Authenticator interface {
	Authenticate(header string, required ...auth.Role) (auth.Identity, error)
}

type verifyErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type roleErrorResponse struct {
	Message  string      `json:"message"`
	Role     auth.Role   `json:"role"`
	Required []auth.Role `json:"required"`
}

// RequireRoles authenticates the bearer token and puts the identity into the
// request context. An empty roles list admits any verified caller.
func RequireRoles(a Authenticator, roles ...auth.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id, err := a.Authenticate(req.Header.Get(auth.AuthorizationHeader), roles...)
			if err != nil {
				return authError(err)
			}
			c.SetRequest(req.WithContext(auth.WithIdentity(req.Context(), id)))
			return next(c)
		}
	}
}

func authError(err error) *echo.HTTPError {
	var (
		verr *auth.VerifyError
		rerr *auth.RoleError
	)
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusForbidden, verifyErrorResponse{
			Message: "invalid token",
			Error:   verr.Err.Error(),
		})
	case errors.As(err, &rerr):
		return echo.NewHTTPError(http.StatusForbidden, roleErrorResponse{
			Message:  "access denied",
			Role:     rerr.Role,
			Required: rerr.Required,
		})
	default:
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
}

func NewRateLimiter(rps rate.Limit) echo.MiddlewareFunc {
	return middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rps))
}

func RequestLoggerConfig(log *zap.Logger) middleware.RequestLoggerConfig {
	log = log.Named("echo")
	return middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		HandleError:  true,
		LogError:     true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := zapcore.InfoLevel
			if v.Error != nil {
				level = zapcore.ErrorLevel
			}
			fields := []zap.Field{
				zap.String("URI", v.URI),
				zap.String("Method", v.Method),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.Error(v.Error),
				zap.String("request_id", v.RequestID),
			}
			if id, ok := auth.FromContext(c.Request().Context()); ok {
				fields = append(fields, zap.Int64("user_id", id.ID))
			}
			log.Log(level, "request", fields...)
			return nil
		},
	}
}
