// Package sampleitems provides database operations for sample items.
package sampleitems

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrlokans/crudgate/internal/apperr"
	"github.com/mrlokans/crudgate/internal/entities"
)

var errItemNotFound = apperr.NotFound("Sample item not found")

// Order selects the created_at sort direction of List.
type Order string

const (
	OrderCreatedAtAsc  Order = "created_at__asc"
	OrderCreatedAtDesc Order = "created_at__desc"
)

// Filter narrows List. Zero values are ignored.
type Filter struct {
	NameEq       string
	NameLike     string
	CreatedAtGte *time.Time
	CreatedAtLte *time.Time
	Order        Order
	Limit        int
	Offset       int
}

// Update holds the fields of a partial update; nil means unchanged.
type Update struct {
	Name        *string
	Description *string
}

type Repository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewRepository(db *gorm.DB, log *zap.Logger) *Repository {
	return &Repository{db: db, log: log.Named("sample_items_repository")}
}

func (r *Repository) Create(ctx context.Context, item *entities.SampleItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Wrap(apperr.KindUniqueConstraintViolation, "Sample item already exists", err)
		}
		return err
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.SampleItem, error) {
	var item entities.SampleItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *Repository) GetByUUID(ctx context.Context, uuid string) (*entities.SampleItem, error) {
	var item entities.SampleItem
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&item).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// List returns one page of items matching f and the total match count.
func (r *Repository) List(ctx context.Context, f Filter) ([]entities.SampleItem, int64, error) {
	filtered := func(q *gorm.DB) *gorm.DB {
		if f.NameEq != "" {
			q = q.Where("name = ?", f.NameEq)
		}
		if f.NameLike != "" {
			q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+f.NameLike+"%")
		}
		if f.CreatedAtGte != nil {
			q = q.Where("created_at >= ?", f.CreatedAtGte.UTC())
		}
		if f.CreatedAtLte != nil {
			q = q.Where("created_at <= ?", f.CreatedAtLte.UTC())
		}
		return q
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.SampleItem{}).Scopes(filtered).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.db.WithContext(ctx).Scopes(filtered)
	if f.Order == OrderCreatedAtDesc {
		q = q.Order("created_at DESC").Order("id DESC")
	} else {
		q = q.Order("created_at ASC").Order("id ASC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var items []entities.SampleItem
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update applies the non-nil fields of u and returns the stored item.
func (r *Repository) Update(ctx context.Context, id uint, u Update) (*entities.SampleItem, error) {
	item, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if u.Name != nil {
		changes["name"] = *u.Name
	}
	if u.Description != nil {
		changes["description"] = *u.Description
	}
	if len(changes) == 0 {
		return item, nil
	}

	if err := r.db.WithContext(ctx).Model(item).Updates(changes).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes the row permanently.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Unscoped().Delete(&entities.SampleItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errItemNotFound
	}
	return nil
}

// LogicalDelete sets deleted_at. A missing item only logs a warning.
func (r *Repository) LogicalDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&entities.SampleItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		r.log.Warn("logical delete of missing sample item", zap.Uint("id", id))
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errItemNotFound
	}
	return err
}
