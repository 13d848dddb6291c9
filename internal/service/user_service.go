package service

import (
	"context"

	"freightdesk/internal/model"
	"freightdesk/internal/repository"
	"freightdesk/pkg/apperror"
	"freightdesk/pkg/pagination"
)

// UserService is the admin view over dashboard accounts. Accounts are created through
// AuthService.CreateUser so passwords are hashed in one place.
type UserService interface {
	ListUsers(ctx context.Context, p pagination.Params) (pagination.Page[model.User], error)
	DeleteUser(ctx context.Context, actorID, id string) error
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) ListUsers(ctx context.Context, p pagination.Params) (pagination.Page[model.User], error) {
	users, total, err := s.repo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return pagination.Page[model.User]{}, userMessages.wrap("fetch users", err)
	}
	return pagination.NewPage(users, p, total), nil
}

func (s *userService) DeleteUser(ctx context.Context, actorID, id string) error {
	uid, err := parseID(id, "user")
	if err != nil {
		return err
	}
	if actorID == uid.String() {
		return apperror.Validation("You cannot delete your own account")
	}
	return userMessages.wrap("delete user", s.repo.Delete(ctx, uid))
}
