package logmanager

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/berth-api/internal/common"
)

type Handler struct {
	scheduler *Scheduler
	exporter  *Exporter
	clock     Clock
}

func NewHandler(scheduler *Scheduler, exporter *Exporter, manager *Manager) *Handler {
	return &Handler{
		scheduler: scheduler,
		exporter:  exporter,
		clock:     manager.Clock(),
	}
}

type ExportResponse struct {
	Date string `json:"date"`
}

// ExportDay re-runs the daily export for ?date=YYYY-MM-DD (default
// yesterday).
func (h *Handler) ExportDay(c echo.Context) error {
	key, err := h.dateParam(c)
	if err != nil {
		return common.SendBadRequest(c, err.Error())
	}

	if err := h.scheduler.ExportDay(c.Request().Context(), key); err != nil {
		switch {
		case errors.Is(err, ErrDayNotComplete):
			return common.SendBadRequest(c, err.Error())
		case errors.Is(err, ErrExportInProgress):
			return common.SendError(c, http.StatusConflict, err.Error(), nil)
		default:
			return common.SendInternalError(c, err.Error())
		}
	}

	return common.SendSuccess(c, ExportResponse{Date: key.String()})
}

// GetArchive returns an exported daily file from object storage.
func (h *Handler) GetArchive(c echo.Context) error {
	key, err := h.dateParam(c)
	if err != nil {
		return common.SendBadRequest(c, err.Error())
	}

	stream := StreamInfo
	if raw := c.QueryParam("stream"); raw != "" {
		if stream, err = ParseStreamKind(raw); err != nil {
			return common.SendBadRequest(c, err.Error())
		}
	}

	body, err := h.exporter.FetchArchive(c.Request().Context(), stream, key)
	if err != nil {
		if errors.Is(err, ErrSinkNotConfigured) {
			return common.SendError(c, http.StatusServiceUnavailable, err.Error(), nil)
		}
		return common.SendInternalError(c, err.Error())
	}

	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", body)
}

func (h *Handler) dateParam(c echo.Context) (DateKey, error) {
	raw := c.QueryParam("date")
	if raw == "" {
		return Yesterday(h.clock.Now()), nil
	}
	return ParseDateKey(raw)
}
