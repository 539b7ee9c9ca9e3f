// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(db, log)
//	user, err := repo.GetByEmail(ctx, "admin@fawapp.com")
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/entities"
)

var errUserNotFound = apperr.NotFound("User not found")

// Filter narrows List. Empty fields are ignored; *Like fields match
// substrings case-insensitively.
type Filter struct {
	FirstNameEq   string
	FirstNameLike string
	LastNameEq    string
	LastNameLike  string
	EmailEq       string
	EmailLike     string
	Limit         int
	Offset        int
}

// Repository handles all user database operations.
type Repository struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB, log *zap.Logger) *Repository {
	return &Repository{db: db, log: log.Named("users_repository")}
}

// Create inserts user and attaches the named roles. A duplicate email or
// UUID yields EntityAlreadyExists.
func (r *Repository) Create(ctx context.Context, user *entities.User, roleNames ...string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(roleNames) > 0 {
			var roles []entities.Role
			if err := tx.Where("name IN ?", roleNames).Find(&roles).Error; err != nil {
				return err
			}
			if len(roles) != len(roleNames) {
				return apperr.Validation(fmt.Sprintf("Unknown role in %v", roleNames))
			}
			user.Roles = roles
		}

		if err := tx.Omit("Roles.*").Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Wrap(apperr.KindEntityAlreadyExists, "User already exists", err)
			}
			return err
		}
		return nil
	})
}

// GetByID retrieves a user by primary key.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetByUUID retrieves a user by UUID.
func (r *Repository) GetByUUID(ctx context.Context, uuid string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetByUUIDWithPermissions retrieves a user with roles and their
// permissions preloaded.
func (r *Repository) GetByUUIDWithPermissions(ctx context.Context, uuid string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).
		Preload("Roles.Permissions").
		Where("uuid = ?", uuid).
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// List returns one page of users matching f and the total match count.
func (r *Repository) List(ctx context.Context, f Filter) ([]entities.User, int64, error) {
	filtered := func(q *gorm.DB) *gorm.DB {
		q = eqOrLike(q, "first_name", f.FirstNameEq, f.FirstNameLike)
		q = eqOrLike(q, "last_name", f.LastNameEq, f.LastNameLike)
		return eqOrLike(q, "email", f.EmailEq, f.EmailLike)
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.User{}).Scopes(filtered).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.db.WithContext(ctx).Scopes(filtered, paginate(f.Limit, f.Offset)).Order("id ASC")

	var out []entities.User
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateLastLogin stamps the user's last successful login.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Update("last_login", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errUserNotFound
	}
	return nil
}

// Delete removes the user row permanently.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := entities.User{ID: id}
		if err := tx.Model(&user).Association("Roles").Clear(); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&user).Error
	})
}

// LogicalDelete sets deleted_at. A missing user only logs a warning.
func (r *Repository) LogicalDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entities.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		r.log.Warn("logical delete of missing user", zap.Uint("id", id))
	}
	return nil
}

func eqOrLike(q *gorm.DB, column, eq, like string) *gorm.DB {
	if eq != "" {
		q = q.Where(column+" = ?", eq)
	}
	if like != "" {
		q = q.Where("LOWER("+column+") LIKE LOWER(?)", "%"+like+"%")
	}
	return q
}

func paginate(limit, offset int) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if limit > 0 {
			q = q.Limit(limit)
		}
		if offset > 0 {
			q = q.Offset(offset)
		}
		return q
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errUserNotFound
	}
	return err
}
