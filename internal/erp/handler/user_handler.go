package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Castor6/dsx-erp/internal/erp/service"
)

// UserHandler 用户管理处理器
type UserHandler struct {
	svc     *service.UserService
	authSvc *service.AuthService
}

func NewUserHandler(svc *service.UserService, authSvc *service.AuthService) *UserHandler {
	return &UserHandler{svc: svc, authSvc: authSvc}
}

// Me 当前用户信息
// GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.authSvc.GetCurrentUser(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, user)
}

// ListUsers 用户列表（仅管理员）
// GET /api/v1/users?page=1&page_size=20
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, pageSize := GetPagination(c)

	items, total, err := h.svc.ListUsers(c.Request.Context(), page, pageSize)
	if err != nil {
		InternalError(c, "获取用户列表失败: "+err.Error())
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// CreateUser 创建用户（仅管理员）
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Created(c, user)
}

// UpdateUser 更新用户（仅管理员）
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, user)
}

// DeleteUser 删除用户（仅管理员）
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")

	if err := h.svc.DeleteUser(c.Request.Context(), id, GetUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "用户删除成功"})
}

// UpdateProfile 更新当前用户个人资料
// PUT /api/v1/users/me/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, user)
}

// ChangePassword 修改当前用户密码
// PUT /api/v1/users/me/change-password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), GetUserID(c), &req); err != nil {
		respondServiceError(c, err)
		return
	}
	Success(c, gin.H{"message": "密码修改成功"})
}
