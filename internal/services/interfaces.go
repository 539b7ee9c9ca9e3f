package services

import (
	"context"
	"time"

	"github.com/mrlokans/crudgate/internal/database/sampleitems"
	"github.com/mrlokans/crudgate/internal/database/users"
	"github.com/mrlokans/crudgate/internal/entities"
)

// UserStore is the user persistence used by the use cases.
// Implemented by users.Repository.
type UserStore interface {
	Create(ctx context.Context, user *entities.User, roleNames ...string) error
	GetByUUID(ctx context.Context, uuid string) (*entities.User, error)
	List(ctx context.Context, f users.Filter) ([]entities.User, int64, error)
}

// SampleItemStore is implemented by sampleitems.Repository.
type SampleItemStore interface {
	Create(ctx context.Context, item *entities.SampleItem) error
	GetByID(ctx context.Context, id uint) (*entities.SampleItem, error)
	GetByUUID(ctx context.Context, uuid string) (*entities.SampleItem, error)
	List(ctx context.Context, f sampleitems.Filter) ([]entities.SampleItem, int64, error)
	Update(ctx context.Context, id uint, u sampleitems.Update) (*entities.SampleItem, error)
	Delete(ctx context.Context, id uint) error
	LogicalDelete(ctx context.Context, id uint) error
}

// ExpiredSessionPurger removes login sessions past their expiry.
// Implemented by both loginsessions repositories.
type ExpiredSessionPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

var (
	_ UserStore       = (*users.Repository)(nil)
	_ SampleItemStore = (*sampleitems.Repository)(nil)
)
