package requestlog

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/berth-api/internal/auth"
	"github.com/tech-arch1tect/berth-api/internal/logmanager"
)

const (
	RequestIDHeader  = "X-Request-ID"
	startContextKey  = "request_start"
	requestIDDataKey = "requestId"
)

// Middleware writes one file log record per request: the input for
// body-carrying methods, and the outcome once the handler returns. Handler
// errors are logged by ErrorHandler instead.
func Middleware(manager *logmanager.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			c.Set(startContextKey, start)

			req := c.Request()
			requestID := req.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
				req.Header.Set(RequestIDHeader, requestID)
			}
			c.Response().Header().Set(RequestIDHeader, requestID)

			if manager == nil || !manager.Enabled() || !shouldLogRequest(req.URL.Path) {
				return next(c)
			}

			if hasBody(req.Method) {
				input := baseMessage(c)
				input.Message = "request"
				manager.Log(input, "")
			}

			if err := next(c); err != nil {
				return err
			}

			outcome := baseMessage(c)
			outcome.StatusCode = c.Response().Status
			outcome.ResponseTime = time.Since(start)

			if outcome.StatusCode == http.StatusOK || outcome.StatusCode == http.StatusCreated {
				outcome.Message = "success"
				manager.Log(outcome, "")
			} else if outcome.StatusCode >= http.StatusBadRequest {
				outcome.Message = http.StatusText(outcome.StatusCode)
				manager.Error(outcome, "")
			} else {
				outcome.Message = http.StatusText(outcome.StatusCode)
				manager.Log(outcome, "")
			}
			return nil
		}
	}
}

func baseMessage(c echo.Context) logmanager.StructuredMessage {
	req := c.Request()
	return logmanager.StructuredMessage{
		OriginalURL: req.RequestURI,
		Method:      req.Method,
		IP:          clientIP(c),
		UserAgent:   req.UserAgent(),
		Data:        requestData(c),
	}
}

// requestData is the default data of a record: the request id plus the
// outcome of bearer authentication when the route required it.
func requestData(c echo.Context) map[string]string {
	data := map[string]string{requestIDDataKey: c.Request().Header.Get(RequestIDHeader)}
	if status, ok := c.Get(auth.AuthStatusContextKey).(string); ok {
		data["authStatus"] = status
	}
	if reason, ok := c.Get(auth.AuthErrorContextKey).(string); ok {
		data["authError"] = reason
	}
	if hash, ok := c.Get(auth.AuthTokenHashContextKey).(string); ok {
		data["tokenHash"] = hash
	}
	return data
}

func clientIP(c echo.Context) string {
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "127.0.0.1"
}

func hasBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

func shouldLogRequest(path string) bool {
	return path != "/health" && path != "/metrics"
}

func elapsed(c echo.Context) time.Duration {
	if start, ok := c.Get(startContextKey).(time.Time); ok {
		return time.Since(start)
	}
	return 0
}
