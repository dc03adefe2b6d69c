package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// 管理者によるユーザー管理（作成・更新・削除・取得・一覧）。
type AdminUserUsecase struct {
	users     repo.UserRepository
	rtRepo    repo.RefreshTokenRepository
	auditRepo repo.AuditLogRepository
}

func NewAdminUserUsecase(
	users repo.UserRepository,
	rtRepo repo.RefreshTokenRepository,
	auditRepo repo.AuditLogRepository,
) *AdminUserUsecase {
	return &AdminUserUsecase{
		users:     users,
		rtRepo:    rtRepo,
		auditRepo: auditRepo,
	}
}

type AdminCreateUserInput struct {
	Email       string
	PhoneNumber string
	Password    string
	FullName    string
	Address     string
	Role        string
}

type AdminUpdateUserInput struct {
	FullName string
	Address  string
	Role     string
	IsActive bool
}

type AdminUserOutput struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phone_number"`
	FullName    string     `json:"full_name"`
	Address     string     `json:"address"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type AdminUserListOutput struct {
	Items []AdminUserOutput `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ユーザー作成（管理者）
func (u *AdminUserUsecase) CreateUser(ctx context.Context, actorAdminUserID int64, in AdminCreateUserInput) (AdminUserOutput, error) {
	if actorAdminUserID <= 0 {
		return AdminUserOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	email := strings.TrimSpace(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return AdminUserOutput{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if len(in.Password) < 8 {
		return AdminUserOutput{}, NewHTTPError(http.StatusBadRequest, "password too short")
	}

	role := model.RoleUser
	if in.Role != "" {
		switch model.Role(in.Role) {
		case model.RoleUser, model.RoleAdmin:
			role = model.Role(in.Role)
		default:
			return AdminUserOutput{}, NewHTTPError(http.StatusBadRequest, "invalid role")
		}
	}

	//email重複チェック
	if existing, err := u.users.FindByEmail(ctx, email); err == nil && existing != nil {
		return AdminUserOutput{}, NewHTTPError(http.StatusConflict, "email already used")
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AdminUserOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		Email:        email,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		PasswordHash: string(pwHash),
		FullName:     strings.TrimSpace(in.FullName),
		Address:      strings.TrimSpace(in.Address),
		Role:         role,
		TokenVersion: 0,
		IsActive:     true,
	}

	if err := u.users.Create(ctx, user); err != nil {
		return AdminUserOutput{}, NewHTTPError(http.StatusConflict, "conflict")
	}

	u.writeAudit(ctx, actorAdminUserID, model.AuditActionCreateUser, user.ID, nil, user)

	return toAdminUserOutput(user), nil
}

// ユーザー更新（管理者）。メール・パスワードはここでは変えない
func (u *AdminUserUsecase) UpdateUser(ctx context.Context, actorAdminUserID int64, userID int64, in AdminUpdateUserInput) (AdminUserOutput, error) {
	if actorAdminUserID <= 0 {
		return AdminUserOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if userID <= 0 {
		return AdminUserOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	switch model.Role(in.Role) {
	case model.RoleUser, model.RoleAdmin:
		// OK
	default:
		return AdminUserOutput{}, NewHTTPError(http.StatusBadRequest, "invalid role")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return AdminUserOutput{}, NewHTTPError(http.StatusNotFound, "user not found")
	}

	before := *user

	user.FullName = strings.TrimSpace(in.FullName)
	user.Address = strings.TrimSpace(in.Address)
	user.Role = model.Role(in.Role)
	user.IsActive = in.IsActive

	if err := u.users.Update(ctx, user); err != nil {
		return AdminUserOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//停止・ロール変更はセッションも切る
	if before.IsActive != user.IsActive || before.Role != user.Role {
		_ = u.users.IncrementTokenVersion(ctx, userID)
		_ = u.rtRepo.DeleteAllByUserID(ctx, userID)
	}

	u.writeAudit(ctx, actorAdminUserID, model.AuditActionUpdateUser, userID, &before, user)

	return toAdminUserOutput(user), nil
}

// ユーザー削除（管理者）
func (u *AdminUserUsecase) DeleteUser(ctx context.Context, actorAdminUserID int64, userID int64) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if userID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	//自分自身は消せない
	if userID == actorAdminUserID {
		return NewHTTPError(http.StatusBadRequest, "cannot delete yourself")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return NewHTTPError(http.StatusNotFound, "user not found")
	}

	//先にセッションを全部消す
	if err := u.rtRepo.DeleteAllByUserID(ctx, userID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.users.Delete(ctx, userID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.writeAudit(ctx, actorAdminUserID, model.AuditActionDeleteUser, userID, user, nil)

	return nil
}

func (u *AdminUserUsecase) GetUser(ctx context.Context, userID int64) (AdminUserOutput, error) {
	if userID <= 0 {
		return AdminUserOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return AdminUserOutput{}, NewHTTPError(http.StatusNotFound, "user not found")
	}

	return toAdminUserOutput(user), nil
}

func (u *AdminUserUsecase) ListUsers(ctx context.Context, page int, limit int) (AdminUserListOutput, error) {
	if page < 1 {
		return AdminUserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return AdminUserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	users, total, err := u.users.List(ctx, page, limit)
	if err != nil {
		return AdminUserListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]AdminUserOutput, 0, len(users))
	for i := range users {
		items = append(items, toAdminUserOutput(&users[i]))
	}

	return AdminUserListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

type AuditLogListInput struct {
	ActorUserID *int64
	Action      string
	Limit       int
	Offset      int
}

// 監査ログ一覧（管理画面用）
func (u *AdminUserUsecase) ListAuditLogs(ctx context.Context, in AuditLogListInput) ([]model.AuditLog, error) {
	if in.Limit < 1 || in.Limit > 200 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Offset < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	f := repo.AuditLogFilter{
		ActorUserID: in.ActorUserID,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}
	if in.Action != "" {
		a := model.AuditAction(in.Action)
		f.Action = &a
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}

// 監査ログ。失敗しても操作自体は成立させる
func (u *AdminUserUsecase) writeAudit(ctx context.Context, actorID int64, action model.AuditAction, userID int64, before *model.User, after *model.User) {
	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       action,
		ResourceType: model.AuditResourceUser,
		ResourceID:   userID,
		BeforeJSON:   userAuditJSON(before),
		AfterJSON:    userAuditJSON(after),
		CreatedAt:    time.Now(),
	})
}

func userAuditJSON(user *model.User) string {
	if user == nil {
		return ""
	}
	b, err := json.Marshal(map[string]interface{}{
		"email":     user.Email,
		"full_name": user.FullName,
		"role":      string(user.Role),
		"is_active": user.IsActive,
	})
	if err != nil {
		return ""
	}
	return string(b)
}

func toAdminUserOutput(user *model.User) AdminUserOutput {
	return AdminUserOutput{
		ID:          user.ID,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		FullName:    user.FullName,
		Address:     user.Address,
		Role:        string(user.Role),
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
