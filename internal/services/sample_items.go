package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/database/sampleitems"
	"github.com/mrlokans/crudgate/internal/entities"
)

// SampleItemService implements the public sample item CRUD.
type SampleItemService struct {
	items SampleItemStore
	log   *zap.Logger
}

func NewSampleItemService(items SampleItemStore, log *zap.Logger) *SampleItemService {
	return &SampleItemService{items: items, log: log.Named("sample_items")}
}

func (s *SampleItemService) Create(ctx context.Context, dto SampleItemCreate) (*SampleItemRead, error) {
	if err := Validate(dto); err != nil {
		return nil, err
	}

	item := &entities.SampleItem{
		UUID:        uuid.NewString(),
		Name:        dto.Name,
		Description: dto.Description,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	read := sampleItemToRead(item, false)
	return &read, nil
}

func (s *SampleItemService) Get(ctx context.Context, id uint, withMeta bool) (*SampleItemRead, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	read := sampleItemToRead(item, withMeta)
	return &read, nil
}

func (s *SampleItemService) GetByUUID(ctx context.Context, uuid string, withMeta bool) (*SampleItemRead, error) {
	item, err := s.items.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	read := sampleItemToRead(item, withMeta)
	return &read, nil
}

func (s *SampleItemService) List(ctx context.Context, q SampleItemListQuery) (*Page[SampleItemRead], error) {
	if err := Validate(q); err != nil {
		return nil, err
	}

	order := sampleitems.OrderCreatedAtAsc
	if q.CreatedAtDsc && !q.CreatedAtAsc {
		order = sampleitems.OrderCreatedAtDesc
	}

	found, total, err := s.items.List(ctx, sampleitems.Filter{
		NameEq:       q.NameEq,
		NameLike:     q.NameLike,
		CreatedAtGte: q.CreatedAtGte,
		CreatedAtLte: q.CreatedAtLte,
		Order:        order,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		return nil, err
	}

	page := &Page[SampleItemRead]{Items: make([]SampleItemRead, 0, len(found)), Total: total, Limit: q.Limit, Offset: q.Offset}
	for i := range found {
		page.Items = append(page.Items, sampleItemToRead(&found[i], false))
	}
	return page, nil
}

func (s *SampleItemService) Update(ctx context.Context, id uint, dto SampleItemUpdate) (*SampleItemRead, error) {
	if err := Validate(dto); err != nil {
		return nil, err
	}

	item, err := s.items.Update(ctx, id, sampleitems.Update{Name: dto.Name, Description: dto.Description})
	if err != nil {
		return nil, err
	}
	read := sampleItemToRead(item, false)
	return &read, nil
}

// Delete removes the item permanently.
func (s *SampleItemService) Delete(ctx context.Context, id uint) error {
	return s.items.Delete(ctx, id)
}

// LogicalDelete marks the item deleted; a missing item is not an error.
func (s *SampleItemService) LogicalDelete(ctx context.Context, id uint) error {
	return s.items.LogicalDelete(ctx, id)
}
