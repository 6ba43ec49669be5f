package session

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/homevisit/homevisit/internal/platform/auth"
	"github.com/homevisit/homevisit/internal/platform/notification"
	"github.com/homevisit/homevisit/pkg/pagination"
)

type Handler struct {
	store    *Store
	issuer   *auth.TokenIssuer
	notifier notification.Notifier
}

func NewHandler(store *Store, issuer *auth.TokenIssuer, notifier notification.Notifier) *Handler {
	return &Handler{store: store, issuer: issuer, notifier: notifier}
}

// RegisterRoutes wires the public login/registration endpoints, the
// session endpoints, and the admin-only approval panel.
func (h *Handler) RegisterRoutes(public, api *echo.Group) {
	public.POST("/login", h.Login)
	public.POST("/register", h.Register)

	api.GET("/session", h.CurrentSession)
	api.POST("/logout", h.Logout)

	adminGroup := api.Group("", auth.RequireAdmin())
	adminGroup.GET("/pending-users", h.ListPendingUsers)
	adminGroup.POST("/pending-users/:id/approve", h.ApproveUser)
	adminGroup.POST("/pending-users/:id/reject", h.RejectUser)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ident, err := h.store.Login(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	token, err := h.issuer.Mint(ident.Username, ident.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, User: ident})
}

func (h *Handler) Logout(c echo.Context) error {
	if err := h.store.Logout(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// CurrentSession reflects the identity carried by the session token.
func (h *Handler) CurrentSession(c echo.Context) error {
	ctx := c.Request().Context()
	return c.JSON(http.StatusOK, Identity{
		Username: auth.UsernameFromContext(ctx),
		Role:     auth.RoleFromContext(ctx),
		Approved: true,
	})
}

type registerRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		h.notifier.Error("Username and password are required")
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		h.notifier.Error("Passwords do not match")
		return echo.NewHTTPError(http.StatusBadRequest, "passwords do not match")
	}

	pending, err := h.store.RegisterRequest(c.Request().Context(), req.Username, req.Password)
	if errors.Is(err, ErrUsernameTaken) {
		return echo.NewHTTPError(http.StatusConflict, "username is already taken")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// The password never leaves the store once queued.
	pending.Password = ""
	return c.JSON(http.StatusCreated, pending)
}

func (h *Handler) ListPendingUsers(c echo.Context) error {
	requests := h.store.PendingRequests()
	for i := range requests {
		requests[i].Password = ""
	}

	pg := pagination.FromContext(c)
	start, end := pg.Slice(len(requests))
	return c.JSON(http.StatusOK, pagination.NewResponse(requests[start:end], len(requests), pg.Limit, pg.Offset))
}

func (h *Handler) ApproveUser(c echo.Context) error {
	if err := h.store.Approve(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RejectUser(c echo.Context) error {
	if err := h.store.Reject(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
