package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/otikanelson/Darb-Networks-sub001/internal/domain/user"
	apperrors "github.com/otikanelson/Darb-Networks-sub001/pkg/errors"
	"github.com/otikanelson/Darb-Networks-sub001/pkg/logger"
	"github.com/otikanelson/Darb-Networks-sub001/pkg/security"
)

// updatableColumns are the columns a profile update may touch.
// id, password, created_at and the verification/login columns have dedicated paths.
var updatableColumns = []string{
	"email", "full_name", "user_type",
	"company_name", "phone_number", "address", "national_id",
	"registration_number", "bank_account_number", "bank_name", "profile_image",
	"is_active", "updated_at",
}

// UserRepoPG implements the user Repository using GORM.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// Create inserts a new user and returns its assigned ID.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	model := fromDomain(u)
	model.ID = 0

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if ve := asValidationError(err); ve != nil {
			return 0, ve
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.WithContext(ctx, r.log).Warn("duplicate email on insert", zap.String("email", u.Email))
			return 0, apperrors.ErrEmailAlreadyTaken
		}
		logger.WithContext(ctx, r.log).Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return 0, apperrors.NewInternalError("failed to create user", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// Update writes the profile columns of an existing user. The ID is never changed.
func (r *UserRepoPG) Update(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}
	if u.ID <= 0 {
		return 0, apperrors.ErrInvalidID
	}

	model := fromDomain(u)

	res := r.db.WithContext(ctx).
		Model(&UserSchema{ID: u.ID}).
		Select(updatableColumns).
		Updates(&model)
	if err := res.Error; err != nil {
		if ve := asValidationError(err); ve != nil {
			return 0, ve
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, apperrors.ErrEmailAlreadyTaken
		}
		logger.WithContext(ctx, r.log).Error("failed to update user in db", zap.Error(err), zap.Int64("id", u.ID))
		return 0, apperrors.NewInternalError("failed to update user", err)
	}
	if res.RowsAffected == 0 {
		return 0, notFound(u.ID)
	}

	r.log.Info("user updated in db", zap.Int64("id", u.ID))
	return u.ID, nil
}

// Delete removes a user from the database by ID.
func (r *UserRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	if id <= 0 {
		return 0, apperrors.ErrInvalidID
	}

	res := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if err := res.Error; err != nil {
		logger.WithContext(ctx, r.log).Error("failed to delete user in db", zap.Error(err), zap.Int64("id", id))
		return 0, apperrors.NewInternalError("failed to delete user", err)
	}
	if res.RowsAffected == 0 {
		return 0, notFound(id)
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return id, nil
}

// GetByID retrieves a user by their unique ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.Int64("id", id))
			return nil, notFound(id)
		}
		logger.WithContext(ctx, r.log).Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	return model.toDomain(), nil
}

// GetByEmail retrieves a user by email address. It returns nil, nil when no user matches.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		logger.WithContext(ctx, r.log).Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, apperrors.NewInternalError("failed to get user by email", err)
	}

	return model.toDomain(), nil
}

// List returns one page of users matching filter along with the total match count.
func (r *UserRepoPG) List(ctx context.Context, filter user.ListFilter, page, limit int64) ([]user.User, int64, error) {
	query, err := security.ValidateSearchQuery(filter.Query)
	if err != nil {
		r.log.Warn("invalid search query", zap.String("query", filter.Query), zap.Error(err))
		return nil, 0, apperrors.NewValidationError("query", fmt.Sprintf("invalid search query: %v", err))
	}

	base := r.db.WithContext(ctx).Model(&UserSchema{})
	if query != "" {
		pattern := "%" + strings.ToLower(security.SanitizeSearchString(query)) + "%"
		base = base.Where(`LOWER(full_name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	if filter.UserType != "" {
		base = base.Where("user_type = ?", filter.UserType)
	}
	if filter.IsActive != nil {
		base = base.Where("is_active = ?", *filter.IsActive)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		logger.WithContext(ctx, r.log).Error("failed to count users", zap.Error(err))
		return nil, 0, apperrors.NewInternalError("failed to count users", err)
	}

	var models []UserSchema
	if err := base.Order("id ASC").Offset(int((page - 1) * limit)).Limit(int(limit)).Find(&models).Error; err != nil {
		logger.WithContext(ctx, r.log).Error("failed to list users from db",
			zap.Error(err),
			zap.String("query", query),
			zap.Int64("page", page),
			zap.Int64("limit", limit),
		)
		return nil, 0, apperrors.NewInternalError("failed to list users", err)
	}

	users := make([]user.User, len(models))
	for i := range models {
		users[i] = *models[i].toDomain()
	}

	return users, total, nil
}

// MarkVerified flags the user's email as confirmed at the given time.
func (r *UserRepoPG) MarkVerified(ctx context.Context, id int64, at time.Time) error {
	return r.updateColumns(ctx, id, "mark user verified", map[string]any{
		"is_verified":       true,
		"email_verified_at": at,
	})
}

// RecordLogin stores the time of the user's latest login.
func (r *UserRepoPG) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	return r.updateColumns(ctx, id, "record login", map[string]any{
		"last_login": at,
	})
}

// GetPasswordHash reads only the password column of a user.
func (r *UserRepoPG) GetPasswordHash(ctx context.Context, id int64) (string, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).Select("id", "password").First(&model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", notFound(id)
	}
	if err != nil {
		logger.WithContext(ctx, r.log).Error("failed to read password hash", zap.Error(err), zap.Int64("id", id))
		return "", apperrors.NewInternalError("failed to read password hash", err)
	}
	return model.Password, nil
}

// UpdatePassword replaces the stored credential.
func (r *UserRepoPG) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.updateColumns(ctx, id, "update password", map[string]any{
		"password": hash,
	})
}

// updateColumns applies values to a single user row; updated_at is maintained by gorm.
func (r *UserRepoPG) updateColumns(ctx context.Context, id int64, op string, values map[string]any) error {
	if id <= 0 {
		return apperrors.ErrInvalidID
	}

	res := r.db.WithContext(ctx).Model(&UserSchema{}).Where("id = ?", id).Updates(values)
	if err := res.Error; err != nil {
		logger.WithContext(ctx, r.log).Error("failed to "+op, zap.Error(err), zap.Int64("id", id))
		return apperrors.NewInternalError("failed to "+op, err)
	}
	if res.RowsAffected == 0 {
		return notFound(id)
	}

	r.log.Info(op, zap.Int64("id", id))
	return nil
}

func asValidationError(err error) *apperrors.ValidationError {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

func notFound(id int64) error {
	return apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
}
