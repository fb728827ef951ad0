package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	user "github.com/joymart/joymart-backend/internal/users"
	pkgAuth "github.com/joymart/joymart-backend/pkg/auth"
	"github.com/joymart/joymart-backend/pkg/config"
	"github.com/joymart/joymart-backend/pkg/db"
	"github.com/joymart/joymart-backend/pkg/db/models"
	"github.com/joymart/joymart-backend/pkg/enums"
	pkgerrors "github.com/joymart/joymart-backend/pkg/errors"
	"github.com/joymart/joymart-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
}

// RegisterInput holds the validated payload to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     enums.UserRole
}

type service struct {
	users  *user.Repository
	jwtCfg config.JWTConfig
	pwCfg  config.PasswordConfig
}

// NewService constructs an auth service with the provided dependencies.
func NewService(users *user.Repository, jwtCfg config.JWTConfig, pwCfg config.PasswordConfig) (Service, error) {
	if users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{users: users, jwtCfg: jwtCfg, pwCfg: pwCfg}, nil
}

// Register creates an account and issues the first token pair. Self-service
// signup covers buyers and sellers; admin accounts are provisioned out of band.
func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	role := input.Role
	if role == "" {
		role = enums.UserRoleUser
	}
	if role != enums.UserRoleUser && role != enums.UserRoleSeller {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be user or seller")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	account := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		Status:       enums.UserStatusActive,
	}
	if err := s.users.Create(ctx, account); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
	}

	return s.respondWithTokens(account)
}

func (s *service) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	account, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	if account.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if account.Status == enums.UserStatusBlocked {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is blocked")
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	return s.respondWithTokens(account)
}

// Refresh exchanges a refresh token for a new pair. Tokens minted before the
// account's last password change are rejected.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := pkgAuth.ParseRefreshToken(s.jwtCfg, refreshToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid refresh token")
	}

	account, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	if account.IsDeleted || account.Status == enums.UserStatusBlocked {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if pkgAuth.IssuedBeforePasswordChange(claims, account.PasswordChangedAt) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token issued before password change")
	}

	return s.respondWithTokens(account)
}

func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	account, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	ok, err := security.VerifyPassword(currentPassword, account.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
	}

	hash, err := security.HashPassword(newPassword, s.pwCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	now := time.Now().UTC()
	account.PasswordHash = hash
	account.PasswordChangedAt = &now
	account.NeedsPasswordChange = false
	if err := s.users.Save(ctx, account); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating password")
	}
	return nil
}

func (s *service) respondWithTokens(account *models.User) (*AuthResponse, error) {
	now := time.Now().UTC()
	payload := pkgAuth.TokenPayload{
		UserID: account.ID,
		Email:  account.Email,
		Role:   account.Role,
	}

	access, err := pkgAuth.MintAccessToken(s.jwtCfg, now, payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}
	refresh, err := pkgAuth.MintRefreshToken(s.jwtCfg, now, payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting refresh token")
	}

	return &AuthResponse{
		User:   user.ToDTO(account),
		Tokens: TokenPair{AccessToken: access, RefreshToken: refresh},
	}, nil
}
