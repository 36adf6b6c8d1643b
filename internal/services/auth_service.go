package services

import (
	"crosslist_backend/internal/auth"
	"crosslist_backend/internal/models"
	"crosslist_backend/internal/repositories"
	"crosslist_backend/pkg/apperrors"
)

type AuthService interface {
	Register(req *models.RegisterRequest) (*models.User, string, error)
	Login(req *models.LoginRequest) (*models.User, string, error)
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(req *models.RegisterRequest) (*models.User, string, error) {
	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, "", apperrors.ErrEmailAlreadyExists
	} else if !apperrors.Is(err, repositories.ErrUserNotFound) {
		return nil, "", err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		PlanType:     models.PlanFree,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Login(req *models.LoginRequest) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
