package service

import (
	"context"
	"fmt"
	"time"

	"rizzpay-gateway/internal/core/domain"
	"rizzpay-gateway/internal/core/ports"
	"rizzpay-gateway/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	merchantRepo ports.MerchantRepository
	activityRepo ports.ActivityLogRepository
	hashSvc      ports.HashService
	tokenSvc     ports.TokenService
	log          zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	merchantRepo ports.MerchantRepository,
	activityRepo ports.ActivityLogRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		merchantRepo: merchantRepo,
		activityRepo: activityRepo,
		hashSvc:      hashSvc,
		tokenSvc:     tokenSvc,
		log:          log,
	}
}

// Register creates a new merchant account.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*ports.RegisterResponse, error) {
	existing, err := s.merchantRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()
	merchant := &domain.Merchant{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: passwordHash,
		BusinessName: req.BusinessName,
		VPA:          req.VPA,
		Status:       domain.MerchantStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.merchantRepo.Create(ctx, merchant); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create merchant: %w", err))
	}

	s.recordActivity(ctx, merchant.ID, domain.ActivityRegister)

	s.log.Info().
		Str("merchant_id", merchant.ID.String()).
		Str("username", merchant.Username).
		Msg("merchant registered")

	return &ports.RegisterResponse{MerchantID: merchant.ID}, nil
}

// Login verifies credentials and issues a JWT.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	merchant, err := s.merchantRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("lookup merchant: %w", err))
	}
	if merchant == nil || !merchant.IsActive() {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hashSvc.Verify(password, merchant.PasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiresAt, err := s.tokenSvc.Generate(merchant.ID, merchant.Username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.recordActivity(ctx, merchant.ID, domain.ActivityLogin)

	return token, expiresAt, nil
}

// recordActivity writes an auth activity row, best effort.
func (s *AuthServiceImpl) recordActivity(ctx context.Context, merchantID uuid.UUID, action domain.ActivityAction) {
	entry := &domain.ActivityLog{
		ID:           uuid.New(),
		MerchantID:   &merchantID,
		Action:       action,
		ResourceType: "merchant",
		ResourceID:   merchantID.String(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.activityRepo.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("merchant_id", merchantID.String()).Msg("activity log write failed")
	}
}
