package identity

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/renalcare/renalcare/internal/platform/auth"
	"github.com/renalcare/renalcare/pkg/pagination"
)

type Handler struct {
	svc *Service
	// production controls the Secure attribute on session cookies.
	production bool
}

func NewHandler(svc *Service, production bool) *Handler {
	return &Handler{svc: svc, production: production}
}

// RegisterAuthRoutes registers the unguarded credential-lifecycle routes.
func (h *Handler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/auth/login", h.Login)
	g.Any("/auth/logout", h.Logout)
	g.POST("/auth/register", h.Register)
}

// RegisterRoutes registers routes that require an authenticated session.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/me", h.Me)

	readGroup := g.Group("", auth.RequireRole("doctor", "staff"))
	readGroup.GET("/patients", h.ListPatients)

	writeGroup := g.Group("", auth.RequireRole("staff"))
	writeGroup.POST("/patients", h.CreatePatient)
	writeGroup.PUT("/patients/:id", h.UpdatePatient)
	writeGroup.DELETE("/patients/:id", h.DeletePatient)
	writeGroup.GET("/users", h.ListUsers)

	// Patients may read their own record; access is checked in-handler.
	g.GET("/patients/:id", h.GetPatient)
}

// -- Credential lifecycle --

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	UserRole Role   `json:"userRole"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Username == "" || req.Password == "" || req.UserRole == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, password and userRole are required"})
	}

	result, err := h.svc.Login(c.Request().Context(), req.Username, req.Password, req.UserRole)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid credentials"})
	case errors.Is(err, ErrRoleMismatch):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "Role mismatch"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}

	c.SetCookie(auth.SessionCookie(result.Token, h.production))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"role":    result.User.Role,
	})
}

// Logout clears the session cookie. It is idempotent and succeeds
// regardless of method or prior session state.
func (h *Handler) Logout(c echo.Context) error {
	c.SetCookie(auth.ExpiredSessionCookie(h.production))
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u, err := h.svc.Register(c.Request().Context(), in)
	switch {
	case errors.Is(err, ErrUsernameTaken):
		return echo.NewHTTPError(http.StatusConflict, "username already taken")
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, u)
}

// -- Session introspection --

func (h *Handler) Me(c echo.Context) error {
	p := auth.PrincipalFromContext(c.Request().Context())
	if p == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	resp := echo.Map{
		"id":       p.UserID,
		"username": p.Username,
		"fullName": p.FullName,
		"role":     p.Role,
	}
	if p.Patient != nil {
		pat, err := h.svc.GetPatient(c.Request().Context(), p.Patient.PatientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load patient record")
		}
		resp["patient"] = pat
	}
	return c.JSON(http.StatusOK, resp)
}

// -- Patients --

func (h *Handler) CreatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePatient(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetPatient(c echo.Context) error {
	id := c.Param("id")
	principal := auth.PrincipalFromContext(c.Request().Context())
	if principal == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	// Patients may only read their own record.
	if principal.Role == string(RolePatient) {
		if principal.Patient == nil || principal.Patient.PatientID != id {
			return echo.NewHTTPError(http.StatusForbidden, "access denied")
		}
	}

	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load patient")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListPatients(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.PatientID = c.Param("id")
	if err := h.svc.UpdatePatient(c.Request().Context(), &p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	if err := h.svc.DeletePatient(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Users --

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListUsers(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
