package handler

import (
	"strconv"

	"bookstore_api/internal/domain/user/service"
	"bookstore_api/internal/pkg/middleware"
	"bookstore_api/pkg/response"
	"bookstore_api/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	service service.UserService
}

// NewUserHandler 创建处理器
func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// LoginInput 登录输入
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 注册
// @Summary 用户注册
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body service.RegisterInput true "Register"
// @Success 201 {object} response.Response{data=model.User}
// @Router /auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.HandleError(c, utils.BindError(err))
		return
	}

	user, err := h.service.Register(c.Request.Context(), input)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Created(c, user)
}

// Login 登录
// @Summary 邮箱密码登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body LoginInput true "Login"
// @Success 200 {object} response.Response{data=service.LoginResult}
// @Router /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.HandleError(c, utils.BindError(err))
		return
	}

	result, err := h.service.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// GetUsers 用户列表 (管理员)
func (h *UserHandler) GetUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	users, total, err := h.service.GetUsers(c.Request.Context(), page, limit)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, utils.PageResult{List: users, Total: total, Page: page, Limit: limit})
}

// GetUser 获取单个用户
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if !middleware.CanAccessUser(c, id) {
		response.HandleError(c, middleware.ErrForbidden)
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateUser 更新用户
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := utils.ParamID(c, "id")
	if err != nil {
		response.HandleError(c, err)
		return
	}
	if !middleware.CanAccessUser(c, id) {
		response.HandleError(c, middleware.ErrForbidden)
		return
	}

	var input service.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.HandleError(c, utils.BindError(err))
		return
	}

	claims, _ := middleware.CurrentUser(c)
	user, err := h.service.UpdateUser(c.Request.Context(), id, input, claims.IsAdmin())
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, user)
}
