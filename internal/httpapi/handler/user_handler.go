package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/middleware"
	"reviewhub/internal/httpapi/permission"
	"reviewhub/internal/httpapi/service"
)

type UserHandler struct {
	accountService service.AccountService
	policy         permission.Policy
}

func NewUserHandler(accountService service.AccountService) *UserHandler {
	return &UserHandler{
		accountService: accountService,
		policy:         permission.AdminOnly{},
	}
}

// RegisterRoutes registers user management routes. "me" is a reserved
// username, so /users/me is dispatched inside the :username handlers
// instead of as a separate route.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.List)
		users.POST("", h.Create)
		users.GET("/:username", h.Get)
		users.PATCH("/:username", h.Update)
		users.DELETE("/:username", h.Delete)
		users.PUT("/:username", methodNotAllowed)
	}
}

// List returns all users, admin only
// GET /api/v1/users?search=<username prefix>
func (h *UserHandler) List(c *gin.Context) {
	if !checkAccess(c, h.policy, permission.ActionRead) {
		return
	}

	var query dto.UserListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	query.Clamp()

	users, total, err := h.accountService.ListUsers(c.Request.Context(), query.Search, query.Page, query.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *dto.FromModelToUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, dto.NewPage(responses, int(total), query.Page, query.PageSize))
}

// Create adds a user with any role, admin only. No confirmation code is
// mailed; the user signs up normally to obtain one.
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	if !checkAccess(c, h.policy, permission.ActionCreate) {
		return
	}

	var req dto.CreateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accountService.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToUserResponse(user))
}

// Get returns a user by username; "me" resolves to the caller
// GET /api/v1/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	if username := c.Param("username"); username == "me" {
		h.getMe(c)
		return
	}

	if !checkAccess(c, h.policy, permission.ActionRead) {
		return
	}

	user, err := h.accountService.GetUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// Update patches a user, admin only; "me" patches the caller's own
// profile and cannot change the role
// PATCH /api/v1/users/:username
func (h *UserHandler) Update(c *gin.Context) {
	if username := c.Param("username"); username == "me" {
		h.updateMe(c)
		return
	}

	if !checkAccess(c, h.policy, permission.ActionUpdate) {
		return
	}

	var req dto.UpdateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accountService.UpdateUser(c.Request.Context(), c.Param("username"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// Delete removes a user, admin only; deleting "me" is not allowed
// DELETE /api/v1/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	if username := c.Param("username"); username == "me" {
		methodNotAllowed(c)
		return
	}

	if !checkAccess(c, h.policy, permission.ActionDelete) {
		return
	}

	if err := h.accountService.DeleteUser(c.Request.Context(), c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/v1/users/me
func (h *UserHandler) getMe(c *gin.Context) {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	user, err := h.accountService.GetProfile(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// PATCH /api/v1/users/me
func (h *UserHandler) updateMe(c *gin.Context) {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req dto.UpdateMeDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accountService.UpdateProfile(c.Request.Context(), identity.UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}
