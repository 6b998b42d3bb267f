package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/berth-api/internal/common"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Profile struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	pair, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return toHTTPError(err)
	}
	return common.SendSuccess(c, pair)
}

// Refresh must run behind TokenMiddleware configured with the refresh
// token parser.
func (h *Handler) Refresh(c echo.Context) error {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	raw, _ := c.Get(RawTokenContextKey).(string)

	access, err := h.service.Refresh(c.Request().Context(), claims, raw)
	if err != nil {
		return toHTTPError(err)
	}
	return common.SendSuccess(c, access)
}

func (h *Handler) Profile(c echo.Context) error {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return common.SendSuccess(c, Profile{ID: claims.ID, Email: claims.Email, Role: claims.Role})
}

func (h *Handler) Admin(c echo.Context) error {
	return h.Profile(c)
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrUnregisteredUser):
		return echo.NewHTTPError(http.StatusForbidden, "Unregistered user")
	case errors.Is(err, ErrWrongPassword):
		return echo.NewHTTPError(http.StatusForbidden, "The password you entered is incorrect.")
	case errors.Is(err, ErrRefreshNotFound):
		return echo.NewHTTPError(http.StatusForbidden, "Not Found RefreshToken")
	case errors.Is(err, ErrRefreshMismatch):
		return echo.NewHTTPError(http.StatusForbidden, "Refresh Token doesn't match")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
}
