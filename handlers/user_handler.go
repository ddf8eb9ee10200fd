package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orderdesk/session-gateway/models"
	"github.com/orderdesk/session-gateway/repositories"
	"github.com/orderdesk/session-gateway/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CreateUserRequest represents a request to register a user
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	CPF      string `json:"cpf" validate:"required,cpf"`
	Password string `json:"password" validate:"required,min=6"`
	Birthday string `json:"birthday" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=ADMIN CUSTOMER KITCHEN OPERATOR MANAGER"`
}

// UpdateUserRequest represents a request to update a user
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=ADMIN CUSTOMER KITCHEN OPERATOR MANAGER"`
}

// UserResponse represents a user in API responses. The password hash
// never appears here.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CPF       string    `json:"cpf"`
	Birthday  string    `json:"birthday"`
	Role      string    `json:"role"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

// UserHandler handles user management HTTP requests
type UserHandler struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users repositories.UserRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// HandleCreateUser handles POST /api/v1/users
func (h *UserHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	birthday, err := time.Parse("2006-01-02", req.Birthday)
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid birthday format, expected YYYY-MM-DD", nil)
		return
	}

	// Duplicate checks before insert keep the error messages specific
	// instead of surfacing a raw unique constraint violation.
	if _, err := h.users.GetByEmail(ctx, req.Email); err == nil {
		_ = utils.WriteConflict(w, "Email already registered", nil)
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		h.logger.Error("failed to check email uniqueness", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to create user")
		return
	}
	if _, err := h.users.GetByCPF(ctx, req.CPF); err == nil {
		_ = utils.WriteConflict(w, "CPF already registered", nil)
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		h.logger.Error("failed to check cpf uniqueness", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to create user")
		return
	}

	role := models.RoleCustomer
	if req.Role != "" {
		role = models.ParseRole(req.Role)
	}

	user := models.NewUser(req.Name, req.Email, req.CPF, utils.HashPassword(req.Password), birthday, role)

	if err := h.users.Create(ctx, user); err != nil {
		// The pre-insert checks race with concurrent creates; the
		// UNIQUE constraint is the authority.
		if errors.Is(err, repositories.ErrDuplicate) {
			_ = utils.WriteConflict(w, "Email or CPF already registered", nil)
			return
		}
		h.logger.Error("failed to create user", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to create user")
		return
	}

	h.logger.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	_ = utils.WriteCreated(w, userToResponse(user))
}

// HandleGetUser handles GET /api/v1/users/{id}
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid user ID format", nil)
		return
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = utils.WriteNotFound(w, "User not found")
			return
		}
		h.logger.Error("failed to fetch user",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to retrieve user")
		return
	}

	_ = utils.WriteOK(w, userToResponse(user))
}

// HandleListUsers handles GET /api/v1/users
func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultPageSize
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			_ = utils.WriteBadRequest(w, "Invalid limit parameter", nil)
			return
		}
		if parsed > maxPageSize {
			parsed = maxPageSize
		}
		limit = parsed
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			_ = utils.WriteBadRequest(w, "Invalid offset parameter", nil)
			return
		}
		offset = parsed
	}

	users, err := h.users.List(ctx, limit, offset)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to retrieve users")
		return
	}

	responses := make([]UserResponse, len(users))
	for i, u := range users {
		responses[i] = userToResponse(u)
	}

	_ = utils.WriteOK(w, responses)
}

// HandleUpdateUser handles PATCH /api/v1/users/{id}
func (h *UserHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid user ID format", nil)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to parse request body", zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = utils.WriteNotFound(w, "User not found")
			return
		}
		h.logger.Error("failed to fetch user",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to update user")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		if _, err := h.users.GetByEmail(ctx, *req.Email); err == nil {
			_ = utils.WriteConflict(w, "Email already registered", nil)
			return
		} else if !errors.Is(err, repositories.ErrNotFound) {
			h.logger.Error("failed to check email uniqueness", zap.Error(err))
			_ = utils.WriteInternalServerError(w, "Failed to update user")
			return
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		user.PasswordHash = utils.HashPassword(*req.Password)
	}
	if req.Role != nil {
		user.Role = models.ParseRole(*req.Role)
	}
	user.UpdatedAt = time.Now()

	if err := h.users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			_ = utils.WriteConflict(w, "Email already registered", nil)
			return
		}
		if errors.Is(err, repositories.ErrNotFound) {
			_ = utils.WriteNotFound(w, "User not found")
			return
		}
		h.logger.Error("failed to update user",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to update user")
		return
	}

	h.logger.Info("user updated", zap.String("user_id", userID.String()))

	_ = utils.WriteOK(w, userToResponse(user))
}

// HandleDeleteUser handles DELETE /api/v1/users/{id}
func (h *UserHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid user ID format", nil)
		return
	}

	if err := h.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = utils.WriteNotFound(w, "User not found")
			return
		}
		h.logger.Error("failed to delete user",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Failed to delete user")
		return
	}

	h.logger.Info("user deleted", zap.String("user_id", userID.String()))

	utils.WriteNoContent(w)
}

// userToResponse converts a User model to a UserResponse
func userToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CPF:       u.CPF,
		Birthday:  u.Birthday.Format("2006-01-02"),
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}
