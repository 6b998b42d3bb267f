package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func SendSuccess(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Envelope{
		Status:  http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func SendCreated(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, Envelope{
		Status:  http.StatusCreated,
		Message: "success",
		Data:    data,
	})
}

func SendError(c echo.Context, statusCode int, message string, data any) error {
	return c.JSON(statusCode, Envelope{
		Status:  statusCode,
		Message: message,
		Data:    data,
	})
}

func SendBadRequest(c echo.Context, message string) error {
	return SendError(c, http.StatusBadRequest, message, nil)
}

func SendInternalError(c echo.Context, message string) error {
	return SendError(c, http.StatusInternalServerError, message, nil)
}
