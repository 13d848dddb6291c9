package service

import (
	"context"
	"errors"
	"strings"

	"freightdesk/internal/auth"
	"freightdesk/internal/model"
	"freightdesk/internal/repository"
	"freightdesk/pkg/apperror"

	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	User        *model.User `json:"user"`
}

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=admin staff"`
}

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Me(ctx context.Context, userID string) (*model.User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error)
}

var userMessages = repoMessages{
	notFound:  "User not found",
	duplicate: "A user with this email already exists",
}

type authService struct {
	repo   repository.UserRepository
	issuer *auth.Issuer
}

func NewAuthService(repo repository.UserRepository, issuer *auth.Issuer) AuthService {
	return &authService{repo: repo, issuer: issuer}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Unauthorized("Invalid email or password")
		}
		return nil, apperror.Internal("Failed to sign in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	token, err := s.issuer.Issue(user.ID, user.Role)
	if err != nil {
		return nil, apperror.Internal("Failed to generate token", err)
	}

	return &LoginResponse{AccessToken: token, User: user}, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*model.User, error) {
	uid, err := parseID(userID, "user")
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		return nil, userMessages.wrap("load user", err)
	}
	return user, nil
}

func (s *authService) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Name) == "" {
		return nil, apperror.Validation("email and name are required")
	}
	if len(req.Password) < 8 {
		return nil, apperror.Validation("password must be at least 8 characters")
	}
	role := req.Role
	if role == "" {
		role = model.RoleStaff
	}
	if role != model.RoleAdmin && role != model.RoleStaff {
		return nil, apperror.Validation("role must be one of: admin, staff")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Internal("Failed to hash password", err)
	}

	user := &model.User{
		Email:    email,
		Name:     strings.TrimSpace(req.Name),
		Password: string(hashed),
		Role:     role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, userMessages.wrap("create user", err)
	}
	return user, nil
}
