// Package auth issues and validates the HS256 token pairs that guard
// the credit ledger API.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/posledger/backend/internal/infrastructure/config"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingBusinessID  = errors.New("missing business_id in claims")
	ErrMissingUserID      = errors.New("missing user_id in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
)

// Claims carries the ledger identity alongside the registered JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	BusinessID   string    `json:"business_id"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Role         string    `json:"role,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

// TokenPair is an access token and the refresh token that renews it.
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"` // Bearer
}

// JWTService signs and verifies ledger tokens.
type JWTService struct {
	accessSecret      []byte
	refreshSecret     []byte
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	issuer            string
	maxRefreshCount   int
}

// NewJWTService builds a service from JWT config. When no separate
// refresh secret is configured both token kinds share the one secret.
func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTService{
		accessSecret:      []byte(cfg.Secret),
		refreshSecret:     []byte(refreshSecret),
		accessExpiration:  cfg.AccessTokenExpiration,
		refreshExpiration: cfg.RefreshTokenExpiration,
		issuer:            cfg.Issuer,
		maxRefreshCount:   cfg.MaxRefreshCount,
	}
}

// GenerateTokenInput identifies the user a token pair is issued for.
type GenerateTokenInput struct {
	BusinessID uuid.UUID
	UserID     uuid.UUID
	Username   string
	Role       string
}

// GenerateTokenPair issues a fresh access and refresh token pair.
func (s *JWTService) GenerateTokenPair(input GenerateTokenInput) (*TokenPair, error) {
	return s.issuePair(identity{
		businessID: input.BusinessID.String(),
		userID:     input.UserID.String(),
		username:   input.Username,
		role:       input.Role,
	}, 0)
}

// RefreshTokenPair exchanges a valid refresh token for a new pair. The
// refresh count carries over so a token chain cannot renew forever.
func (s *JWTService) RefreshTokenPair(refreshToken, username, role string) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.RefreshCount >= s.maxRefreshCount {
		return nil, ErrMaxRefreshExceeded
	}
	if _, err := uuid.Parse(claims.BusinessID); err != nil {
		return nil, ErrInvalidClaims
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, ErrInvalidClaims
	}

	return s.issuePair(identity{
		businessID: claims.BusinessID,
		userID:     claims.UserID,
		username:   username,
		role:       role,
	}, claims.RefreshCount+1)
}

// ValidateAccessToken verifies an access token and returns its claims.
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, s.accessSecret, TokenTypeAccess)
}

// ValidateRefreshToken verifies a refresh token and returns its claims.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, s.refreshSecret, TokenTypeRefresh)
}

type identity struct {
	businessID string
	userID     string
	username   string
	role       string
}

func (s *JWTService) issuePair(id identity, refreshCount int) (*TokenPair, error) {
	now := time.Now()

	access := s.newClaims(id, TokenTypeAccess, now, s.accessExpiration)
	accessToken, err := s.sign(access)
	if err != nil {
		return nil, err
	}

	// The refresh token omits username and role; they are reloaded from
	// the user record on exchange.
	refresh := s.newClaims(identity{businessID: id.businessID, userID: id.userID},
		TokenTypeRefresh, now, s.refreshExpiration)
	refresh.RefreshCount = refreshCount
	refreshToken, err := s.sign(refresh)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(s.accessExpiration),
		RefreshTokenExpiresAt: now.Add(s.refreshExpiration),
		TokenType:             "Bearer",
	}, nil
}

func (s *JWTService) newClaims(id identity, kind TokenType, now time.Time, ttl time.Duration) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   id.userID,
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		BusinessID: id.businessID,
		UserID:     id.userID,
		Username:   id.username,
		Role:       id.role,
		TokenType:  kind,
	}
}

func (s *JWTService) sign(claims *Claims) (string, error) {
	secret := s.accessSecret
	if claims.TokenType == TokenTypeRefresh {
		secret = s.refreshSecret
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *JWTService) validateToken(tokenString string, secret []byte, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != want {
		return nil, ErrInvalidTokenType
	}
	if claims.BusinessID == "" {
		return nil, ErrMissingBusinessID
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}
