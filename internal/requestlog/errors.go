package requestlog

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/berth-api/internal/common"
	"github.com/tech-arch1tect/berth-api/internal/logging"
	"github.com/tech-arch1tect/berth-api/internal/logmanager"

	"go.uber.org/zap"
)

// ErrorHandler turns every handler error into the JSON envelope and writes
// one error record for it.
func ErrorHandler(manager *logmanager.Manager, logger *logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message, data := describe(err)

		if manager != nil && shouldLogRequest(c.Request().URL.Path) {
			record := baseMessage(c)
			record.Message = message
			record.StatusCode = status
			record.ResponseTime = elapsed(c)
			if data != nil {
				record.Data = data
			}
			manager.Error(record, "")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = common.SendError(c, status, message, data)
		}
		if writeErr != nil {
			logger.Error("failed to write error response", zap.Error(writeErr))
		}
	}
}

// describe maps an error onto status, message and optional detail. Server
// errors keep the cause out of the message but carry it as data.
func describe(err error) (int, string, any) {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		return http.StatusInternalServerError, "Server error", err.Error()
	}

	message := fmt.Sprintf("%v", he.Message)
	switch {
	case he.Code >= http.StatusInternalServerError:
		detail := message
		if he.Internal != nil {
			detail = he.Internal.Error()
		}
		return he.Code, "Server error", detail
	case he.Code == http.StatusBadRequest:
		return he.Code, message, message
	default:
		return he.Code, message, nil
	}
}
