package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/online-storefront/internal/repository"
)

// AdminUserHandler is the superadmin account management surface.
type AdminUserHandler struct {
	Users *repository.UserRepo
}

func NewAdminUserHandler(u *repository.UserRepo) *AdminUserHandler {
	return &AdminUserHandler{Users: u}
}

type roleReq struct {
	Role string `json:"role" validate:"required,oneof=CUSTOMER ADMIN SUPERADMIN"`
}

type adminUserPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// List pages through accounts.
func (h *AdminUserHandler) List(c echo.Context) error {
	offset, limit := listParams(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx, offset, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list users failed"})
	}
	out := make([]adminUserPart, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserPart{
			ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role, IsActive: u.IsActive,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// UpdateRole promotes or demotes an account.  The change is effective
// on the target's next request because roles are reloaded per request.
func (h *AdminUserHandler) UpdateRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req roleReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.UpdateRole(ctx, id, req.Role); err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update role failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "role updated"})
}

// Deactivate locks an account out.  Outstanding tokens are rejected at
// the very next request because resolution reloads the user.
func (h *AdminUserHandler) Deactivate(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if id == p.ID {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot deactivate own account"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Deactivate(ctx, id); err != nil {
		if isNoRows(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deactivated"})
}
