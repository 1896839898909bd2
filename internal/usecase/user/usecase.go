package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	domain "github.com/otikanelson/Darb-Networks-sub001/internal/domain/user"
	apperrors "github.com/otikanelson/Darb-Networks-sub001/pkg/errors"
	"github.com/otikanelson/Darb-Networks-sub001/pkg/logger"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	// bcrypt only reads the first 72 bytes of a password
	maxPasswordBytes = 72
)

// Repository defines the interface for user data access operations.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (int64, error)                                           // Create a new user
	GetByID(ctx context.Context, id int64) (*domain.User, error)                                         // Retrieve user by ID
	GetByEmail(ctx context.Context, email string) (*domain.User, error)                                  // Retrieve user by email, nil when absent
	Update(ctx context.Context, u *domain.User) (int64, error)                                           // Update profile columns
	Delete(ctx context.Context, id int64) (int64, error)                                                 // Delete user by ID
	List(ctx context.Context, filter domain.ListFilter, page, limit int64) ([]domain.User, int64, error) // List users with total count
	MarkVerified(ctx context.Context, id int64, at time.Time) error                                      // Confirm email
	RecordLogin(ctx context.Context, id int64, at time.Time) error                                       // Track last login
	UpdatePassword(ctx context.Context, id int64, hash string) error                                     // Replace credential
	GetPasswordHash(ctx context.Context, id int64) (string, error)                                       // Stored credential, never cached
}

// Usecase implements the user account workflows.
type Usecase struct {
	repo       Repository          // Repository for data access
	log        *zap.Logger         // Logger for structured logging
	validate   *validator.Validate // Validator for request validation
	bcryptCost int
	now        func() time.Time
}

// Option customizes a Usecase.
type Option func(*Usecase)

// WithBcryptCost sets the bcrypt work factor used for new password hashes.
func WithBcryptCost(cost int) Option {
	return func(uc *Usecase) {
		uc.bcryptCost = cost
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(uc *Usecase) {
		uc.now = now
	}
}

// New creates a new Usecase with the provided repository and logger.
func New(r Repository, log *zap.Logger, opts ...Option) *Usecase {
	uc := &Usecase{
		repo:       r,
		log:        log,
		validate:   NewValidator(),
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// NewValidator returns a validator that knows the user_type rule.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("user_type", func(fl validator.FieldLevel) bool {
		return domain.Type(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("password_bytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	return v
}

// formatValidationError converts validator.ValidationErrors into an application ValidationError.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	out := &apperrors.ValidationError{}
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			out.Add(e.Field(), "is required")
		case "email":
			out.Add(e.Field(), "must be a valid email")
		case "min":
			out.Add(e.Field(), fmt.Sprintf("must be at least %s characters", e.Param()))
		case "max":
			out.Add(e.Field(), fmt.Sprintf("must be at most %s characters", e.Param()))
		case "user_type":
			out.Add(e.Field(), "must be one of founder, investor, admin")
		case "password_bytes":
			out.Add(e.Field(), fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
		case "nefield":
			out.Add(e.Field(), fmt.Sprintf("must differ from %s", e.Param()))
		default:
			out.Add(e.Field(), "is invalid")
		}
	}
	return out
}

// CreateUser registers a new user after validating the request and checking email uniqueness.
func (uc *Usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	in.Email = normalizeEmail(in.Email)
	log.Info("creating user", zap.String("email", in.Email), zap.String("user_type", in.UserType))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if err := uc.ensureEmailAvailable(ctx, in.Email, 0); err != nil {
		return nil, err
	}

	hash, err := uc.hashPassword("Password", in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u := &domain.User{
		Email:      in.Email,
		Password:   hash,
		FullName:   strings.TrimSpace(in.FullName),
		UserType:   domain.Type(in.UserType),
		IsActive:   boolOr(in.IsActive, true),
		IsVerified: boolOr(in.IsVerified, false),
	}
	in.ProfileFields.toDomain().Apply(u)
	if u.IsVerified {
		verifiedAt := uc.now()
		u.EmailVerifiedAt = &verifiedAt
	}

	id, err := uc.repo.Create(ctx, u)
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, err
	}
	return &CreateUserResponse{ID: id}, nil
}

// UpdateUser applies a profile edit to an existing user.
func (uc *Usecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*UpdateUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	in.Email = normalizeEmail(in.Email)
	log.Info("updating user", zap.Int64("id", in.ID), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	existing, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		log.Warn("failed to load user for update", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	if in.Email != "" && in.Email != existing.Email {
		if err := uc.ensureEmailAvailable(ctx, in.Email, in.ID); err != nil {
			return nil, err
		}
		existing.Email = in.Email
	}
	if in.FullName != "" {
		existing.FullName = strings.TrimSpace(in.FullName)
	}
	if in.UserType != "" {
		existing.UserType = domain.Type(in.UserType)
	}
	if in.IsActive != nil {
		existing.IsActive = *in.IsActive
	}
	in.ProfileFields.toDomain().Apply(existing)

	id, err := uc.repo.Update(ctx, existing)
	if err != nil {
		log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	return &UpdateUserResponse{ID: id}, nil
}

// DeleteUser removes a user.
func (uc *Usecase) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("deleting user", zap.Int64("id", in.ID))

	if in.ID <= 0 {
		log.Warn("delete user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, apperrors.ErrInvalidID
	}

	id, err := uc.repo.Delete(ctx, in.ID)
	if err != nil {
		log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	return &DeleteUserResponse{ID: id}, nil
}

// GetUser retrieves a user by ID.
func (uc *Usecase) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	if in.ID <= 0 {
		uc.log.Warn("get user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, apperrors.ErrInvalidID
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		logger.WithContext(ctx, uc.log).Warn("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	return &GetUserResponse{User: toUserDTO(u)}, nil
}

// ListUsers returns one page of users with optional search and filters.
func (uc *Usecase) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	if in.Page <= 0 {
		in.Page = defaultPage
	}
	if in.Limit <= 0 {
		in.Limit = defaultLimit
	}
	if in.Limit > maxLimit {
		in.Limit = maxLimit
	}

	log := logger.WithContext(ctx, uc.log)
	log.Info("listing users",
		zap.String("query", in.Query),
		zap.String("user_type", in.UserType),
		zap.Int64("page", in.Page),
		zap.Int64("limit", in.Limit),
	)

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	filter := domain.ListFilter{
		Query:    in.Query,
		UserType: domain.Type(in.UserType),
		IsActive: in.IsActive,
	}

	domainUsers, total, err := uc.repo.List(ctx, filter, in.Page, in.Limit)
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		return nil, err
	}

	users := make([]User, len(domainUsers))
	for i := range domainUsers {
		users[i] = toUserDTO(&domainUsers[i])
	}

	return &ListUsersResponse{
		Users:      users,
		Pagination: domain.NewPagination(total, in.Page, in.Limit),
	}, nil
}

// VerifyEmail marks the user's email as confirmed. Verifying twice keeps the first timestamp.
func (uc *Usecase) VerifyEmail(ctx context.Context, in VerifyEmailRequest) (*VerifyEmailResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	if in.ID <= 0 {
		return nil, apperrors.ErrInvalidID
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if u.IsVerified && u.EmailVerifiedAt != nil {
		log.Debug("email already verified", zap.Int64("id", in.ID))
		return &VerifyEmailResponse{ID: u.ID, VerifiedAt: *u.EmailVerifiedAt}, nil
	}

	at := uc.now()
	if err := uc.repo.MarkVerified(ctx, in.ID, at); err != nil {
		log.Error("failed to verify email", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	log.Info("email verified", zap.Int64("id", in.ID))
	return &VerifyEmailResponse{ID: in.ID, VerifiedAt: at}, nil
}

// RecordLogin stores the current time as the user's last login. Inactive users are refused.
func (uc *Usecase) RecordLogin(ctx context.Context, in RecordLoginRequest) (*RecordLoginResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	if in.ID <= 0 {
		return nil, apperrors.ErrInvalidID
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		log.Warn("login recorded for inactive user refused", zap.Int64("id", in.ID))
		return nil, apperrors.NewValidationError("id", "user is not active")
	}

	at := uc.now()
	if err := uc.repo.RecordLogin(ctx, in.ID, at); err != nil {
		log.Error("failed to record login", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	return &RecordLoginResponse{ID: in.ID, LastLogin: at}, nil
}

// ChangePassword checks the current password and stores a hash of the new one.
func (uc *Usecase) ChangePassword(ctx context.Context, in ChangePasswordRequest) (*ChangePasswordResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("changing password", zap.Int64("id", in.ID))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	current, err := uc.repo.GetPasswordHash(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(current), []byte(in.CurrentPassword)); err != nil {
		log.Warn("current password mismatch", zap.Int64("id", in.ID))
		return nil, apperrors.NewValidationError("CurrentPassword", "is incorrect")
	}

	hash, err := uc.hashPassword("NewPassword", in.NewPassword)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.UpdatePassword(ctx, in.ID, hash); err != nil {
		log.Error("failed to update password", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	return &ChangePasswordResponse{ID: in.ID}, nil
}

// ensureEmailAvailable fails when email belongs to a user other than selfID.
func (uc *Usecase) ensureEmailAvailable(ctx context.Context, email string, selfID int64) error {
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		uc.log.Error("failed to check existing email", zap.String("email", email), zap.Error(err))
		return apperrors.NewInternalError("failed to validate email uniqueness", err)
	}
	if existing != nil && existing.ID != selfID {
		uc.log.Warn("email already exists", zap.String("email", email), zap.Int64("existing_id", existing.ID))
		return apperrors.ErrEmailAlreadyTaken
	}
	return nil
}

// hashPassword bcrypt-hashes password; field names the request field in validation errors.
func (uc *Usecase) hashPassword(field, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperrors.NewValidationError(field, fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
	if err != nil {
		return "", apperrors.NewInternalError("failed to hash password", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
