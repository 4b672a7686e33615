package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/taskwise/taskwise/internal/config"
	"github.com/taskwise/taskwise/internal/platform/logger"
)

// hmacJWTService is an implementation of JWTService using HMAC-SHA signing.
type hmacJWTService struct {
	accessKey       []byte
	refreshKey      []byte
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	timeFunc        func() time.Time // Injectable for testing
	clockSkew       time.Duration    // Allowed drift when validating time claims
}

// accessTokenClaims is the wire structure of access token claims.
type accessTokenClaims struct {
	UserID    uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	SessionID uuid.UUID `json:"session_id"`
	jwt.RegisteredClaims
}

// refreshTokenClaims is the wire structure of refresh token claims.
type refreshTokenClaims struct {
	SessionID uuid.UUID `json:"session_id"`
	Hash      string    `json:"hash"`
	jwt.RegisteredClaims
}

// Ensure hmacJWTService implements JWTService interface
var _ JWTService = (*hmacJWTService)(nil)

// NewJWTService creates a new JWT service using HMAC-SHA256 signing with
// the configured access and refresh secrets and lifetimes.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}
	if len(cfg.JWTRefreshSecret) < 32 {
		return nil, fmt.Errorf("jwt refresh secret must be at least 32 characters")
	}
	if cfg.JWTSecret == cfg.JWTRefreshSecret {
		return nil, fmt.Errorf("access and refresh secrets must differ")
	}

	return &hmacJWTService{
		accessKey:       []byte(cfg.JWTSecret),
		refreshKey:      []byte(cfg.JWTRefreshSecret),
		accessLifetime:  time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		refreshLifetime: time.Duration(cfg.RefreshTokenLifetimeMinutes) * time.Minute,
		timeFunc:        time.Now,
		clockSkew:       2 * time.Minute,
	}, nil
}

// GenerateTokenPair implements JWTService.GenerateTokenPair.
// The two tokens are independent signing operations and are produced
// concurrently before being joined into the pair.
func (s *hmacJWTService) GenerateTokenPair(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	hash string,
) (*TokenPair, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()
	accessExpiry := now.Add(s.accessLifetime)

	var accessToken, refreshToken string

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		claims := accessTokenClaims{
			UserID:    userID,
			Role:      "",
			SessionID: sessionID,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   userID.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(accessExpiry),
				ID:        uuid.New().String(),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessKey)
		if err != nil {
			return fmt.Errorf("failed to sign access token: %w", err)
		}
		accessToken = signed
		return nil
	})
	g.Go(func() error {
		claims := refreshTokenClaims{
			SessionID: sessionID,
			Hash:      hash,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   sessionID.String(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshLifetime)),
				ID:        uuid.New().String(),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshKey)
		if err != nil {
			return fmt.Errorf("failed to sign refresh token: %w", err)
		}
		refreshToken = signed
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("failed to sign token pair",
			"error", err,
			"user_id", userID,
			"session_id", sessionID)
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpiry,
	}, nil
}

// parserOptions returns the jwt parser options shared by both validators.
func (s *hmacJWTService) parserOptions() []jwt.ParserOption {
	now := s.timeFunc()
	return []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
}

// ValidateAccessToken implements JWTService.ValidateAccessToken.
func (s *hmacJWTService) ValidateAccessToken(ctx context.Context, tokenString string) (*AccessClaims, error) {
	log := logger.FromContext(ctx)

	token, err := jwt.ParseWithClaims(
		tokenString,
		&accessTokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.accessKey, nil
		},
		s.parserOptions()...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("access token validation failed: token expired", "error", err)
			return nil, ErrExpiredToken
		}
		log.Debug("access token validation failed", "error", err)
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*accessTokenClaims)
	if !ok || !token.Valid {
		log.Debug("access token validation failed: invalid claims")
		return nil, ErrInvalidToken
	}

	return &AccessClaims{
		UserID:    claims.UserID,
		Role:      claims.Role,
		SessionID: claims.SessionID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ValidateRefreshToken implements JWTService.ValidateRefreshToken.
func (s *hmacJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*RefreshClaims, error) {
	log := logger.FromContext(ctx)

	token, err := jwt.ParseWithClaims(
		tokenString,
		&refreshTokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.refreshKey, nil
		},
		s.parserOptions()...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("refresh token validation failed: token expired", "error", err)
			return nil, ErrExpiredRefreshToken
		}
		log.Debug("refresh token validation failed", "error", err)
		return nil, ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(*refreshTokenClaims)
	if !ok || !token.Valid {
		log.Debug("refresh token validation failed: invalid claims")
		return nil, ErrInvalidRefreshToken
	}

	return &RefreshClaims{
		SessionID: claims.SessionID,
		Hash:      claims.Hash,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
