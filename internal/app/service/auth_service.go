package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"camp_photos/internal/common"
	"camp_photos/internal/common/security"
	"camp_photos/internal/domain/model"
	"camp_photos/internal/domain/repository"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
	codec    *security.TokenCodec
}

func NewAuthService(userRepo repository.UserRepository, codec *security.TokenCodec) *AuthService {
	return &AuthService{userRepo: userRepo, codec: codec}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var fields []string
	if req.Username == "" {
		fields = append(fields, "username: must not be blank")
	}
	if req.Password == "" {
		fields = append(fields, "password: must not be blank")
	}
	if req.Role != "" && req.Role != model.RoleUser && req.Role != model.RoleAdmin {
		fields = append(fields, "role: must be USER or ADMIN")
	}
	if len(fields) > 0 {
		return nil, &common.ValidationError{Fields: fields}
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		HashedPassword: hashedPassword,
		Role:           role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo returns common.ErrConflict on a taken username.
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.codec.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("username and password are required: %w", common.ErrBadRequest)
	}

	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("bad credentials: %w", common.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, fmt.Errorf("bad credentials: %w", common.ErrUnauthorized)
	}

	token, err := s.codec.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{Token: token}, nil
}

// EnsureAdmin seeds the configured admin account once at startup. Idempotent.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}

	hashed, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	err = s.userRepo.Create(ctx, &model.User{
		ID:             uuid.NewString(),
		Username:       username,
		HashedPassword: hashed,
		Role:           model.RoleAdmin,
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil // lost a startup race to another instance
		}
		return err
	}
	log.Printf("admin user %q created", username)
	return nil
}
