package cached

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/otikanelson/Darb-Networks-sub001/internal/adapter/cache"
	domain "github.com/otikanelson/Darb-Networks-sub001/internal/domain/user"
	"github.com/otikanelson/Darb-Networks-sub001/internal/usecase/user"
)

// UserRepository decorates a persistent user.Repository with a cache-aside read path.
// Every write invalidates the cached entry of the affected user.
type UserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository creates a new caching repository. A nil cache disables caching.
func NewUserRepository(dbRepo user.Repository, c cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		dbRepo: dbRepo,
		cache:  c,
		log:    log,
	}
}

// Create delegates to the DB repository.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	return r.dbRepo.Create(ctx, u)
}

// GetByID retrieves a user by ID using Cache-Aside pattern.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, id)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
		} else if cachedUser != nil {
			r.log.Debug("user retrieved from cache", zap.Int64("id", id))
			return cachedUser, nil
		}
	}

	// Concurrent misses for the same user share one database read
	result, err, shared := r.group.Do(cache.Key(id), func() (any, error) {
		u, err := r.dbRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if err := r.cache.Set(ctx, u); err != nil {
				r.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
			}
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.log.Debug("user load shared with concurrent caller", zap.Int64("id", id))
	}

	// Callers may mutate the result; hand each one its own copy
	u := *result.(*domain.User)
	return &u, nil
}

// GetByEmail delegates to the DB repository.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.dbRepo.GetByEmail(ctx, email)
}

// List delegates to the DB repository.
func (r *UserRepository) List(ctx context.Context, filter domain.ListFilter, page, limit int64) ([]domain.User, int64, error) {
	return r.dbRepo.List(ctx, filter, page, limit)
}

// Update updates the user in DB and invalidates the cache.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) (int64, error) {
	id, err := r.dbRepo.Update(ctx, u)
	if err != nil {
		return 0, err
	}
	r.invalidate(ctx, u.ID, "update")
	return id, nil
}

// Delete deletes the user from DB and invalidates the cache.
func (r *UserRepository) Delete(ctx context.Context, id int64) (int64, error) {
	deletedID, err := r.dbRepo.Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	r.invalidate(ctx, id, "delete")
	return deletedID, nil
}

// MarkVerified delegates to the DB repository and invalidates the cache.
func (r *UserRepository) MarkVerified(ctx context.Context, id int64, at time.Time) error {
	if err := r.dbRepo.MarkVerified(ctx, id, at); err != nil {
		return err
	}
	r.invalidate(ctx, id, "verify")
	return nil
}

// RecordLogin delegates to the DB repository and invalidates the cache.
func (r *UserRepository) RecordLogin(ctx context.Context, id int64, at time.Time) error {
	if err := r.dbRepo.RecordLogin(ctx, id, at); err != nil {
		return err
	}
	r.invalidate(ctx, id, "login")
	return nil
}

// UpdatePassword delegates to the DB repository and invalidates the cache.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	if err := r.dbRepo.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}
	r.invalidate(ctx, id, "password change")
	return nil
}

// GetPasswordHash always reads the database, since cached users carry no credential.
func (r *UserRepository) GetPasswordHash(ctx context.Context, id int64) (string, error) {
	return r.dbRepo.GetPasswordHash(ctx, id)
}

func (r *UserRepository) invalidate(ctx context.Context, id int64, op string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cache after "+op, zap.Int64("id", id), zap.Error(err))
	}
}
