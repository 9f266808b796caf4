package assistant

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/renalcare/renalcare/internal/platform/auth"
)

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/assistant/chat", h.Chat)
	g.GET("/assistant/history", h.History)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *Handler) Chat(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	reply, err := h.svc.Chat(c.Request().Context(), userID, req.Message)
	if err != nil {
		// The upstream failure detail goes to the log, not the client.
		h.logger.Error().Err(err).Str("user_id", p.UserID).Msg("assistant chat failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Assistant is unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reply": reply})
}

func (h *Handler) History(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	turns, err := h.svc.History(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load history")
	}
	if turns == nil {
		turns = []Turn{}
	}
	return c.JSON(http.StatusOK, turns)
}
