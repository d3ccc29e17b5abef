package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appidentity "github.com/posledger/backend/internal/application/identity"
	"github.com/posledger/backend/internal/domain/identity"
	"github.com/posledger/backend/internal/infrastructure/auth"
	"github.com/posledger/backend/internal/infrastructure/config"
	"github.com/posledger/backend/internal/interfaces/http/middleware"
)

// MockUserRepository mocks identity.UserRepository. Shared with the
// user handler tests in this package.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

// handlerTestJWTService builds the JWT service the handler fixtures
// in this package share.
func handlerTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-32-chars-min!!",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "posledger-test",
		MaxRefreshCount:        10,
	})
}

func createTestUserForHandler(businessID uuid.UUID) *identity.User {
	user, _ := identity.NewUser(businessID, "grace.njeri", "Password123", identity.UserRoleCashier)
	return user
}

// authFixture wires an AuthHandler behind the real JWT middleware so
// the tests cover the full login and refresh paths.
type authFixture struct {
	repo       *MockUserRepository
	jwt        *auth.JWTService
	engine     *gin.Engine
	businessID uuid.UUID
	user       *identity.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &authFixture{
		repo:       new(MockUserRepository),
		businessID: uuid.New(),
		jwt:        handlerTestJWTService(),
	}
	f.user = createTestUserForHandler(f.businessID)
	require.NotNil(t, f.user)

	h := NewAuthHandler(appidentity.NewAuthService(f.repo, f.jwt, zap.NewNop()))

	f.engine = gin.New()
	open := f.engine.Group("/api/v1/auth")
	open.POST("/login", h.Login)
	open.POST("/refresh", h.RefreshToken)

	protected := f.engine.Group("/api/v1/auth")
	protected.Use(middleware.JWTAuthMiddleware(f.jwt))
	protected.GET("/me", h.GetCurrentUser)
	protected.PUT("/password", h.ChangePassword)

	return f
}

// do sends a JSON request, optionally with a bearer token.
func (f *authFixture) do(t *testing.T, method, path string, payload any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if raw, ok := payload.([]byte); ok {
		body = bytes.NewReader(raw)
	} else if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func (f *authFixture) accessToken(t *testing.T) *auth.TokenPair {
	t.Helper()
	pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{
		BusinessID: f.businessID,
		UserID:     f.user.ID,
		Username:   f.user.Username,
		Role:       f.user.Role.String(),
	})
	require.NoError(t, err)
	return pair
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("valid credentials return token pair and profile", func(t *testing.T) {
		f := newAuthFixture(t)
		f.repo.On("FindByUsername", mock.Anything, "grace.njeri").Return(f.user, nil)
		f.repo.On("Update", mock.Anything, f.user).Return(nil)

		w := f.do(t, http.MethodPost, "/api/v1/auth/login",
			LoginRequest{Username: "grace.njeri", Password: "Password123"}, "")

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeData(t, w)

		token := data["token"].(map[string]interface{})
		assert.NotEmpty(t, token["access_token"])
		assert.NotEmpty(t, token["refresh_token"])
		assert.Equal(t, "Bearer", token["token_type"])

		profile := data["user"].(map[string]interface{})
		assert.Equal(t, "grace.njeri", profile["username"])
		assert.Equal(t, f.businessID.String(), profile["business_id"])
		assert.Equal(t, "cashier", profile["role"])
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		f := newAuthFixture(t)

		w := f.do(t, http.MethodPost, "/api/v1/auth/login", []byte("not json"), "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong password is a 401", func(t *testing.T) {
		f := newAuthFixture(t)
		f.repo.On("FindByUsername", mock.Anything, "grace.njeri").Return(f.user, nil)

		w := f.do(t, http.MethodPost, "/api/v1/auth/login",
			LoginRequest{Username: "grace.njeri", Password: "WrongPass99"}, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
	})

	t.Run("deactivated account is a 403", func(t *testing.T) {
		f := newAuthFixture(t)
		f.user.Deactivate()
		f.repo.On("FindByUsername", mock.Anything, "grace.njeri").Return(f.user, nil)

		w := f.do(t, http.MethodPost, "/api/v1/auth/login",
			LoginRequest{Username: "grace.njeri", Password: "Password123"}, "")

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "ACCOUNT_DEACTIVATED")
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	t.Run("valid refresh token returns a new pair", func(t *testing.T) {
		f := newAuthFixture(t)
		f.repo.On("FindByID", mock.Anything, f.user.ID).Return(f.user, nil)
		pair := f.accessToken(t)

		w := f.do(t, http.MethodPost, "/api/v1/auth/refresh",
			RefreshTokenRequest{RefreshToken: pair.RefreshToken}, "")

		require.Equal(t, http.StatusOK, w.Code)
		token := decodeData(t, w)["token"].(map[string]interface{})
		assert.NotEmpty(t, token["access_token"])
		assert.NotEmpty(t, token["refresh_token"])
	})

	t.Run("garbage refresh token is a 401", func(t *testing.T) {
		f := newAuthFixture(t)

		w := f.do(t, http.MethodPost, "/api/v1/auth/refresh",
			RefreshTokenRequest{RefreshToken: "not-a-valid-token"}, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_INVALID")
	})
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	t.Run("returns the authenticated profile", func(t *testing.T) {
		f := newAuthFixture(t)
		f.user.SetDisplayName("Grace Njeri")
		f.repo.On("FindByID", mock.Anything, f.user.ID).Return(f.user, nil)

		w := f.do(t, http.MethodGet, "/api/v1/auth/me", nil, f.accessToken(t).AccessToken)

		require.Equal(t, http.StatusOK, w.Code)
		profile := decodeData(t, w)["user"].(map[string]interface{})
		assert.Equal(t, "grace.njeri", profile["username"])
		assert.Equal(t, "Grace Njeri", profile["display_name"])
	})

	t.Run("missing token is a 401", func(t *testing.T) {
		f := newAuthFixture(t)

		w := f.do(t, http.MethodGet, "/api/v1/auth/me", nil, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	t.Run("rotates the password", func(t *testing.T) {
		f := newAuthFixture(t)
		f.repo.On("FindByID", mock.Anything, f.user.ID).Return(f.user, nil)
		f.repo.On("Update", mock.Anything, f.user).Return(nil)

		w := f.do(t, http.MethodPut, "/api/v1/auth/password",
			ChangePasswordRequest{OldPassword: "Password123", NewPassword: "NewPassword456"},
			f.accessToken(t).AccessToken)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, f.user.VerifyPassword("NewPassword456"))
		f.repo.AssertExpectations(t)
	})

	t.Run("wrong old password is a 401", func(t *testing.T) {
		f := newAuthFixture(t)
		f.repo.On("FindByID", mock.Anything, f.user.ID).Return(f.user, nil)

		w := f.do(t, http.MethodPut, "/api/v1/auth/password",
			ChangePasswordRequest{OldPassword: "WrongOldPass1", NewPassword: "NewPassword456"},
			f.accessToken(t).AccessToken)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
	})
}
