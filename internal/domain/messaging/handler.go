package messaging

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/renalcare/renalcare/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/messages", h.Send)
	g.GET("/messages", h.Conversations)
}

type sendRequest struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

func (h *Handler) Send(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	var req sendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	recipientID, err := uuid.Parse(req.To)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid recipient id")
	}
	senderID, err := uuid.Parse(p.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	m, err := h.svc.Send(c.Request().Context(), senderID, p.Role, recipientID, req.Content)
	switch {
	case errors.Is(err, ErrEmptyContent), errors.Is(err, ErrSelfMessage):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrRecipientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrRecipientNotAllowed):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to send message")
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) Conversations(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	convs, err := h.svc.Conversations(c.Request().Context(), userID, p.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load conversations")
	}
	return c.JSON(http.StatusOK, convs)
}
