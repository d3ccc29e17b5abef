package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/posledger/backend/internal/infrastructure/auth"
	"github.com/posledger/backend/internal/infrastructure/logger"
	"github.com/posledger/backend/internal/interfaces/http/dto"
)

const jwtClaimsKey = "jwt_claims"

// JWTMiddlewareConfig configures the bearer-token gate.
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// SkipPaths bypass authentication entirely (login, health checks).
	SkipPaths []string
	Logger    *zap.Logger
}

// JWTAuthMiddleware gates requests with the default skip list.
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
	})
}

// JWTAuthMiddlewareWithConfig validates the Authorization bearer token
// and stores the claims for downstream handlers. The request context
// logger picks up the authenticated user and business.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			rejectUnauthorized(c, cfg, auth.ErrInvalidToken)
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			rejectUnauthorized(c, cfg, err)
			return
		}

		c.Set(jwtClaimsKey, claims)

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, log = logger.WithUserID(ctx, log, claims.UserID)
		ctx, _ = logger.WithBusinessID(ctx, log, claims.BusinessID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func rejectUnauthorized(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	if cfg.Logger != nil {
		cfg.Logger.Warn("Rejected unauthenticated request",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
	}

	code, message := "TOKEN_INVALID", "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = "TOKEN_EXPIRED", "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		message = "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidTokenType):
		message = "Invalid token type"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, c.GetString("X-Request-ID")))
}

// GetJWTClaims returns the validated claims, or nil before the JWT
// middleware has run.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	v, exists := c.Get(jwtClaimsKey)
	if !exists {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func GetJWTUserID(c *gin.Context) string {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

func GetJWTBusinessID(c *gin.Context) string {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.BusinessID
	}
	return ""
}

func GetJWTRole(c *gin.Context) string {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.Role
	}
	return ""
}
