package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	usecase "github.com/otikanelson/Darb-Networks-sub001/internal/usecase/user"
	apperrors "github.com/otikanelson/Darb-Networks-sub001/pkg/errors"
	"github.com/otikanelson/Darb-Networks-sub001/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  usecase.UserUsecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc usecase.UserUsecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// ProfileRequest carries the optional profile attributes.
type ProfileRequest struct {
	CompanyName        *string `json:"company_name,omitempty"`
	PhoneNumber        *string `json:"phone_number,omitempty"`
	Address            *string `json:"address,omitempty"`
	NationalID         *string `json:"national_id,omitempty"`
	RegistrationNumber *string `json:"registration_number,omitempty"`
	BankAccountNumber  *string `json:"bank_account_number,omitempty"`
	BankName           *string `json:"bank_name,omitempty"`
	ProfileImage       *string `json:"profile_image,omitempty"`
}

func (p ProfileRequest) toUsecase() usecase.ProfileFields {
	return usecase.ProfileFields{
		CompanyName:        p.CompanyName,
		PhoneNumber:        p.PhoneNumber,
		Address:            p.Address,
		NationalID:         p.NationalID,
		RegistrationNumber: p.RegistrationNumber,
		BankAccountNumber:  p.BankAccountNumber,
		BankName:           p.BankName,
		ProfileImage:       p.ProfileImage,
	}
}

// CreateUserRequest represents the HTTP request body for registering a user
type CreateUserRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	FullName   string `json:"full_name" binding:"required"`
	UserType   string `json:"user_type" binding:"required"`
	IsActive   *bool  `json:"is_active,omitempty"`
	IsVerified *bool  `json:"is_verified,omitempty"`
	ProfileRequest
}

// UpdateUserRequest represents the HTTP request body for a profile edit
type UpdateUserRequest struct {
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	UserType string `json:"user_type,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
	ProfileRequest
}

// ChangePasswordRequest represents the HTTP request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID                 int64      `json:"id"`
	Email              string     `json:"email"`
	FullName           string     `json:"full_name"`
	UserType           string     `json:"user_type"`
	CompanyName        *string    `json:"company_name,omitempty"`
	PhoneNumber        *string    `json:"phone_number,omitempty"`
	Address            *string    `json:"address,omitempty"`
	NationalID         *string    `json:"national_id,omitempty"`
	RegistrationNumber *string    `json:"registration_number,omitempty"`
	BankAccountNumber  *string    `json:"bank_account_number,omitempty"`
	BankName           *string    `json:"bank_name,omitempty"`
	ProfileImage       *string    `json:"profile_image,omitempty"`
	IsActive           bool       `json:"is_active"`
	IsVerified         bool       `json:"is_verified"`
	EmailVerifiedAt    *time.Time `json:"email_verified_at,omitempty"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func toUserResponse(u usecase.User) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Email:              u.Email,
		FullName:           u.FullName,
		UserType:           u.UserType,
		CompanyName:        u.CompanyName,
		PhoneNumber:        u.PhoneNumber,
		Address:            u.Address,
		NationalID:         u.NationalID,
		RegistrationNumber: u.RegistrationNumber,
		BankAccountNumber:  u.BankAccountNumber,
		BankName:           u.BankName,
		ProfileImage:       u.ProfileImage,
		IsActive:           u.IsActive,
		IsVerified:         u.IsVerified,
		EmailVerifiedAt:    u.EmailVerifiedAt,
		LastLogin:          u.LastLogin,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

// IDResponse is returned by write operations
type IDResponse struct {
	ID int64 `json:"id"`
}

// VerifyEmailResponse is returned by POST /v1/users/:id/verify
type VerifyEmailResponse struct {
	ID              int64     `json:"id"`
	EmailVerifiedAt time.Time `json:"email_verified_at"`
}

// RecordLoginResponse is returned by POST /v1/users/:id/login
type RecordLoginResponse struct {
	ID        int64     `json:"id"`
	LastLogin time.Time `json:"last_login"`
}

// ListUsersResponse represents the HTTP response for listing users
type ListUsersResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination *Pagination    `json:"pagination,omitempty"`
}

// Pagination represents pagination information
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CreateUser handles POST /v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !h.bind(c, &req) {
		return
	}

	h.logger(c).Info("Gin CreateUser request", zap.String("email", req.Email), zap.String("user_type", req.UserType))

	resp, err := h.uc.CreateUser(c.Request.Context(), usecase.CreateUserRequest{
		Email:         req.Email,
		Password:      req.Password,
		FullName:      req.FullName,
		UserType:      req.UserType,
		IsActive:      req.IsActive,
		IsVerified:    req.IsVerified,
		ProfileFields: req.ProfileRequest.toUsecase(),
	})
	if err != nil {
		h.handleError(c, "CreateUser", err)
		return
	}

	c.JSON(http.StatusCreated, IDResponse{ID: resp.ID})
}

// GetUser handles GET /v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.uc.GetUser(c.Request.Context(), usecase.GetUserRequest{ID: id})
	if err != nil {
		h.handleError(c, "GetUser", err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp.User))
}

// UpdateUser handles PUT /v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !h.bind(c, &req) {
		return
	}

	h.logger(c).Info("Gin UpdateUser request", zap.Int64("id", id))

	resp, err := h.uc.UpdateUser(c.Request.Context(), usecase.UpdateUserRequest{
		ID:            id,
		Email:         req.Email,
		FullName:      req.FullName,
		UserType:      req.UserType,
		IsActive:      req.IsActive,
		ProfileFields: req.ProfileRequest.toUsecase(),
	})
	if err != nil {
		h.handleError(c, "UpdateUser", err)
		return
	}

	c.JSON(http.StatusOK, IDResponse{ID: resp.ID})
}

// DeleteUser handles DELETE /v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	h.logger(c).Info("Gin DeleteUser request", zap.Int64("id", id))

	resp, err := h.uc.DeleteUser(c.Request.Context(), usecase.DeleteUserRequest{ID: id})
	if err != nil {
		h.handleError(c, "DeleteUser", err)
		return
	}

	c.JSON(http.StatusOK, IDResponse{ID: resp.ID})
}

// ListUsers handles GET /v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}

	// The usecase clamps the limit; only parse errors are handled here
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if err != nil {
		limit = 10
	}

	req := usecase.ListUsersRequest{
		Query:    c.Query("query"),
		UserType: c.Query("user_type"),
		Page:     page,
		Limit:    limit,
	}
	if raw, ok := c.GetQuery("is_active"); ok {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(c, http.StatusBadRequest, "validation_error", "is_active must be a boolean")
			return
		}
		req.IsActive = &active
	}

	resp, err := h.uc.ListUsers(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, "ListUsers", err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = toUserResponse(u)
	}

	var pagination *Pagination
	if resp.Pagination != nil {
		pagination = &Pagination{
			Total:      resp.Pagination.Total,
			Page:       resp.Pagination.Page,
			Limit:      resp.Pagination.Limit,
			TotalPages: resp.Pagination.TotalPages,
		}
	}

	c.JSON(http.StatusOK, ListUsersResponse{
		Users:      users,
		Pagination: pagination,
	})
}

// VerifyEmail handles POST /v1/users/:id/verify
func (h *UserHandler) VerifyEmail(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.uc.VerifyEmail(c.Request.Context(), usecase.VerifyEmailRequest{ID: id})
	if err != nil {
		h.handleError(c, "VerifyEmail", err)
		return
	}

	c.JSON(http.StatusOK, VerifyEmailResponse{ID: resp.ID, EmailVerifiedAt: resp.VerifiedAt})
}

// RecordLogin handles POST /v1/users/:id/login
func (h *UserHandler) RecordLogin(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	resp, err := h.uc.RecordLogin(c.Request.Context(), usecase.RecordLoginRequest{ID: id})
	if err != nil {
		h.handleError(c, "RecordLogin", err)
		return
	}

	c.JSON(http.StatusOK, RecordLoginResponse{ID: resp.ID, LastLogin: resp.LastLogin})
}

// ChangePassword handles PUT /v1/users/:id/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.uc.ChangePassword(c.Request.Context(), usecase.ChangePasswordRequest{
		ID:              id,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		h.handleError(c, "ChangePassword", err)
		return
	}

	c.JSON(http.StatusOK, IDResponse{ID: resp.ID})
}

func (h *UserHandler) logger(c *gin.Context) *zap.Logger {
	return logger.WithContext(c.Request.Context(), h.log)
}

func (h *UserHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger(c).Warn("Invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
		h.writeError(c, http.StatusBadRequest, "validation_error", err.Error())
		return false
	}
	return true
}

func (h *UserHandler) parseID(c *gin.Context) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		h.logger(c).Warn("Invalid user ID", zap.String("id", idStr))
		h.writeError(c, http.StatusBadRequest, "invalid_id", "User ID must be a positive integer")
		return 0, false
	}
	return id, true
}

// handleError converts usecase errors to HTTP responses
func (h *UserHandler) handleError(c *gin.Context, op string, err error) {
	status := apperrors.HTTPStatus(err)
	log := h.logger(c).With(zap.String("op", op), zap.Error(err))

	var (
		validationErr *apperrors.ValidationError
		notFoundErr   *apperrors.NotFoundError
		existsErr     *apperrors.AlreadyExistsError
	)
	switch {
	case errors.As(err, &validationErr):
		log.Warn("Gin request rejected")
		h.writeError(c, status, "validation_error", validationErr.Error())
	case errors.As(err, &notFoundErr):
		log.Warn("Gin request rejected")
		h.writeError(c, status, "not_found", notFoundErr.Error())
	case errors.As(err, &existsErr):
		log.Warn("Gin request rejected")
		h.writeError(c, status, "already_exists", existsErr.Error())
	default:
		log.Error("Gin request failed")
		h.writeError(c, http.StatusInternalServerError, "internal_error", "An internal error occurred")
	}
}

func (h *UserHandler) writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: code, Message: message})
}
