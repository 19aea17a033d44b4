package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salonpos-backend/models"
	"salonpos-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type Session struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         models.Role `json:"role"`
	ShopID       uuid.UUID   `json:"shopId"`
}

type AuthService struct {
	db      *gorm.DB
	tokens  *utils.TokenManager
	revoker TokenRevoker
	logger  *zap.Logger
}

// NewAuthService builds the service; revoker may be nil, in which case logout only clears cookies.
func NewAuthService(db *gorm.DB, tokens *utils.TokenManager, revoker TokenRevoker, logger *zap.Logger) *AuthService {
	return &AuthService{db: db, tokens: tokens, revoker: revoker, logger: logger}
}

func (s *AuthService) Tokens() *utils.TokenManager { return s.tokens }

func newSession(user *models.User, access, refresh string) *Session {
	return &Session{
		Token:        access,
		RefreshToken: refresh,
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		ShopID:       user.ShopID,
	}
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive || !utils.CheckPasswordHash(in.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, _, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", &now).Error; err != nil {
		s.logger.Warn("record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return newSession(&user, access, refresh), nil
}

// Refresh exchanges a valid, unrevoked refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.tokens.Parse(refreshToken, utils.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Error("check token revocation", zap.Error(err))
			return nil, fmt.Errorf("%w: token store unavailable", ErrExternalService)
		}
		if revoked {
			return nil, fmt.Errorf("%w: token revoked", ErrInvalidCredentials)
		}
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidCredentials)
	}
	var user models.User
	err = s.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !user.IsActive) {
		return nil, fmt.Errorf("%w: user unavailable", ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return newSession(&user, access, ""), nil
}

// Logout denylists the refresh token for its remaining lifetime. Invalid tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if s.revoker == nil || refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.Parse(refreshToken, utils.RefreshToken)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		s.logger.Error("revoke refresh token", zap.Error(err))
		return fmt.Errorf("%w: token store unavailable", ErrExternalService)
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, actor utils.Identity) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Shop").First(&user, "id = ?", actor.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, actor.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}
