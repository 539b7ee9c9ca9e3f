package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrlokans/crudgate/internal/auth"
	"github.com/mrlokans/crudgate/internal/database/users"
	"github.com/mrlokans/crudgate/internal/entities"
)

// UserService implements the admin user use cases.
type UserService struct {
	users  UserStore
	hasher *auth.PasswordHasher
	log    *zap.Logger
}

func NewUserService(users UserStore, hasher *auth.PasswordHasher, log *zap.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, log: log.Named("users")}
}

// Create validates dto, hashes the password and stores the user. Users get
// the "user" role unless another is named.
func (s *UserService) Create(ctx context.Context, dto UserCreate) (*UserRead, error) {
	if err := Validate(dto); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, passwordError(err)
	}

	active := true
	if dto.IsActive != nil {
		active = *dto.IsActive
	}
	role := dto.Role
	if role == "" {
		role = entities.RoleUser
	}

	user := &entities.User{
		UUID:         uuid.NewString(),
		Email:        dto.Email,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		PasswordHash: hash,
		IsActive:     active,
		IsSuperuser:  dto.IsSuperuser,
	}
	if err := s.users.Create(ctx, user, role); err != nil {
		return nil, err
	}

	s.log.Info("user created", zap.String("user_uuid", user.UUID), zap.String("role", role))
	read := userToRead(user)
	return &read, nil
}

// Get returns a user by UUID.
func (s *UserService) Get(ctx context.Context, uuid string) (*UserRead, error) {
	user, err := s.users.GetByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}
	read := userToRead(user)
	return &read, nil
}

// List returns one page of users.
func (s *UserService) List(ctx context.Context, q UserListQuery) (*Page[UserRead], error) {
	if err := Validate(q); err != nil {
		return nil, err
	}

	found, total, err := s.users.List(ctx, users.Filter{
		FirstNameEq:   q.FirstNameEq,
		FirstNameLike: q.FirstNameLike,
		LastNameEq:    q.LastNameEq,
		LastNameLike:  q.LastNameLike,
		EmailEq:       q.EmailEq,
		EmailLike:     q.EmailLike,
		Limit:         q.Limit,
		Offset:        q.Offset,
	})
	if err != nil {
		return nil, err
	}

	page := &Page[UserRead]{Items: make([]UserRead, 0, len(found)), Total: total, Limit: q.Limit, Offset: q.Offset}
	for i := range found {
		page.Items = append(page.Items, userToRead(&found[i]))
	}
	return page, nil
}
