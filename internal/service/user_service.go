package service

import (
	"context"

	"choresbot/internal/domain"
)

// UserService owns the registered member set. The task core reads users only
// for ids and admin membership.
type UserService struct {
	uow UnitOfWork
}

func NewUserService(uow UnitOfWork) *UserService {
	return &UserService{uow: uow}
}

func (s *UserService) RegisterUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	user, err = scope.Users.Add(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := scope.Commit(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

// CheckUserExistence tries id, then first name, then username, returning true
// on the first match. All keys empty fails with ErrUserAttributeRequired.
func (s *UserService) CheckUserExistence(ctx context.Context, id int64, firstName, username string) (bool, error) {
	if id == 0 && firstName == "" && username == "" {
		return false, domain.ErrUserAttributeRequired
	}

	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	if id != 0 {
		user, err := scope.Users.Get(ctx, id)
		if err != nil {
			return false, err
		}
		if user != nil {
			return true, nil
		}
	}
	if firstName != "" {
		user, err := scope.Users.GetByFirstName(ctx, firstName)
		if err != nil {
			return false, err
		}
		if user != nil {
			return true, nil
		}
	}
	if username != "" {
		user, err := scope.Users.GetByUsername(ctx, username)
		if err != nil {
			return false, err
		}
		if user != nil {
			return true, nil
		}
	}
	return false, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	user, err := scope.Users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	user, err := scope.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	return scope.Users.List(ctx)
}
