package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin配下のユーザー管理・監査ログ・フィードバックモデレーション
type AdminUserHandler struct {
	cfg      config.Config
	userRepo repository.UserRepository
	userUC   *usecase.AdminUserUsecase
	authUC   *usecase.AuthUsecase
	fbUC     *usecase.FeedbackUsecase
}

func NewAdminUserHandler(
	cfg config.Config,
	userRepo repository.UserRepository,
	userUC *usecase.AdminUserUsecase,
	authUC *usecase.AuthUsecase,
	fbUC *usecase.FeedbackUsecase,
) *AdminUserHandler {
	return &AdminUserHandler{
		cfg:      cfg,
		userRepo: userRepo,
		userUC:   userUC,
		authUC:   authUC,
		fbUC:     fbUC,
	}
}

type AdminCreateUserRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	Address     string `json:"address"`
	Role        string `json:"role"`
}

type AdminUpdateUserRequest struct {
	FullName string `json:"full_name"`
	Address  string `json:"address"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo) {
	// /admin 配下は全部「JWT必須 + token_version一致 + ADMIN限定」
	admin := e.Group(
		"/admin",
		middleware.AuthJWT(h.cfg),
		middleware.TokenVersionGuard(h.userRepo),
		middleware.AdminRoleGuard(),
	)

	admin.GET("/users", h.listUsers)
	admin.POST("/users", h.createUser)
	admin.GET("/users/:id", h.getUser)
	admin.PUT("/users/:id", h.updateUser)
	admin.DELETE("/users/:id", h.deleteUser)
	admin.POST("/users/:id/force-logout", h.forceLogout)

	admin.GET("/audit-logs", h.listAuditLogs)

	admin.GET("/feedbacks/recent", h.recentFeedbacks)
	admin.DELETE("/feedbacks/:id", h.deleteFeedback)
}

func (h *AdminUserHandler) listUsers(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.userUC.ListUsers(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) createUser(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AdminCreateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.userUC.CreateUser(c.Request().Context(), adminID, usecase.AdminCreateUserInput{
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		FullName:    req.FullName,
		Address:     req.Address,
		Role:        req.Role,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AdminUserHandler) getUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, uerr := h.userUC.GetUser(c.Request().Context(), id)
	if uerr != nil {
		return writeError(c, uerr)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) updateUser(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req AdminUpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, uerr := h.userUC.UpdateUser(c.Request().Context(), adminID, id, usecase.AdminUpdateUserInput{
		FullName: req.FullName,
		Address:  req.Address,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if uerr != nil {
		return writeError(c, uerr)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) deleteUser(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if uerr := h.userUC.DeleteUser(c.Request().Context(), adminID, id); uerr != nil {
		return writeError(c, uerr)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	idStr := c.Param("id")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || userID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id"})
	}

	res, uerr := h.authUC.ForceLogout(c.Request().Context(), userID)
	if uerr != nil {
		return writeAuthError(c, uerr)
	}

	return c.JSON(http.StatusOK, res)
}

func (h *AdminUserHandler) listAuditLogs(c echo.Context) error {
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	offset := 0
	if v := c.QueryParam("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
		}
		offset = o
	}

	var actorID *int64
	if v := c.QueryParam("actor_user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid actor_user_id"})
		}
		actorID = &id
	}

	out, err := h.userUC.ListAuditLogs(c.Request().Context(), usecase.AuditLogListInput{
		ActorUserID: actorID,
		Action:      c.QueryParam("action"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// 新着フィードバック（モデレーション用）
func (h *AdminUserHandler) recentFeedbacks(c echo.Context) error {
	count := 20
	if v := c.QueryParam("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid count"})
		}
		count = n
	}

	out, err := h.fbUC.ListRecent(c.Request().Context(), count)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// 管理者は他人のフィードバックも消せる
func (h *AdminUserHandler) deleteFeedback(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if uerr := h.fbUC.Delete(c.Request().Context(), adminID, true, id); uerr != nil {
		return writeError(c, uerr)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
