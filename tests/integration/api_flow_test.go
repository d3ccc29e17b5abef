package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	identityapp "github.com/posledger/backend/internal/application/identity"
	ledgerapp "github.com/posledger/backend/internal/application/ledger"
	"github.com/posledger/backend/internal/domain/identity"
	"github.com/posledger/backend/internal/infrastructure/auth"
	"github.com/posledger/backend/internal/infrastructure/config"
	"github.com/posledger/backend/internal/infrastructure/persistence"
	"github.com/posledger/backend/internal/interfaces/http/handler"
	"github.com/posledger/backend/internal/interfaces/http/middleware"
)

// APITestServer wires the real HTTP stack over a containerized database
type APITestServer struct {
	DB         *LedgerDB
	Engine     *gin.Engine
	UserRepo   *persistence.GormUserRepository
	JWTService *auth.JWTService
	BusinessID uuid.UUID
}

// NewAPITestServer builds a server with real repositories, services and
// middleware, backed by a PostgreSQL container.
func NewAPITestServer(t *testing.T) *APITestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	testDB := NewSharedTestDB(t)
	testDB.CleanTables()

	userRepo := persistence.NewGormUserRepository(testDB.DB)
	saleRepo := persistence.NewGormCreditSaleRepository(testDB.DB)
	paymentRepo := persistence.NewGormCreditPaymentRepository(testDB.DB)
	txManager := persistence.NewGormTransactionManager(testDB.DB)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-api-testing-1234567890",
		RefreshSecret:          "test-refresh-secret-key-for-api-testing",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "posledger-test",
		MaxRefreshCount:        10,
	})

	log := zap.NewNop()
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	creditService := ledgerapp.NewCreditLedgerService(saleRepo, paymentRepo, userRepo, txManager, log)

	authHandler := handler.NewAuthHandler(authService)
	creditHandler := handler.NewCreditHandler(creditService)

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths:  []string{"/api/v1/auth/login", "/api/v1/auth/refresh"},
		Logger:     log,
	}))

	api := engine.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.RefreshToken)
		api.GET("/auth/me", authHandler.GetCurrentUser)
		api.PUT("/auth/password", authHandler.ChangePassword)

		api.GET("/credit", creditHandler.List)
		api.POST("/credit", creditHandler.Open)
		api.GET("/credit/summary", creditHandler.Summary)
		api.GET("/credit/customer/:phone", creditHandler.ListByCustomer)
		api.POST("/credit/payment", creditHandler.RecordPayment)
		api.GET("/credit/:id", creditHandler.GetByID)
	}

	return &APITestServer{
		DB:         testDB,
		Engine:     engine,
		UserRepo:   userRepo,
		JWTService: jwtService,
		BusinessID: uuid.New(),
	}
}

// CreateUser persists a user directly through the repository
func (s *APITestServer) CreateUser(t *testing.T, username, password string, role identity.UserRole) *identity.User {
	t.Helper()

	user, err := identity.NewUser(s.BusinessID, username, password, role)
	require.NoError(t, err)
	require.NoError(t, s.UserRepo.Create(context.Background(), user))
	return user
}

func (s *APITestServer) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)
	return w
}

// Login performs a login request and returns the access token
func (s *APITestServer) Login(t *testing.T, username, password string) string {
	t.Helper()

	w := s.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	var resp struct {
		Data struct {
			Token struct {
				AccessToken string `json:"access_token"`
			} `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token.AccessToken)
	return resp.Data.Token.AccessToken
}

func TestAPI_LoginFlow(t *testing.T) {
	server := NewAPITestServer(t)
	server.CreateUser(t, "john.owner", "Password123", identity.UserRoleOwner)

	token := server.Login(t, "john.owner", "Password123")

	// The token works against a protected endpoint
	w := server.request(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "john.owner")

	// Wrong password is rejected
	w = server.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "john.owner",
		"password": "WrongPassword1",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")

	// Missing token is rejected
	w = server.request(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_DeactivatedUserCannotLogin(t *testing.T) {
	server := NewAPITestServer(t)
	user := server.CreateUser(t, "mary.cashier", "Password123", identity.UserRoleCashier)

	user.Deactivate()
	require.NoError(t, server.UserRepo.Update(context.Background(), user))

	w := server.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "mary.cashier",
		"password": "Password123",
	})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "ACCOUNT_DEACTIVATED")
}

func TestAPI_CreditFlow(t *testing.T) {
	server := NewAPITestServer(t)
	server.CreateUser(t, "grace.cashier", "Password123", identity.UserRoleCashier)
	token := server.Login(t, "grace.cashier", "Password123")

	// Open a credit sale
	saleID := uuid.New()
	w := server.request(t, http.MethodPost, "/api/v1/credit", token, map[string]any{
		"sale_id":        saleID.String(),
		"customer_phone": "+254712345678",
		"customer_name":  "Wanjiru Kamau",
		"total_amount":   4500,
	})
	require.Equal(t, http.StatusCreated, w.Code, "open failed: %s", w.Body.String())

	var openResp struct {
		Data struct {
			ID      string `json:"id"`
			Status  string `json:"status"`
			Balance string `json:"balance_amount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &openResp))
	assert.Equal(t, "PENDING", openResp.Data.Status)
	assert.Equal(t, "4500", openResp.Data.Balance)

	// Opening the same sale again conflicts
	w = server.request(t, http.MethodPost, "/api/v1/credit", token, map[string]any{
		"sale_id":        saleID.String(),
		"customer_phone": "+254712345678",
		"total_amount":   4500,
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// Record a partial payment; the operator comes from the token
	w = server.request(t, http.MethodPost, "/api/v1/credit/payment", token, map[string]any{
		"credit_sale_id": openResp.Data.ID,
		"amount":         1500,
		"payment_method": "mpesa",
	})
	require.Equal(t, http.StatusOK, w.Code, "payment failed: %s", w.Body.String())
	assert.Contains(t, w.Body.String(), "PARTIAL")
	assert.Contains(t, w.Body.String(), "grace.cashier")

	// Overpayment is rejected with a clean error
	w = server.request(t, http.MethodPost, "/api/v1/credit/payment", token, map[string]any{
		"credit_sale_id": openResp.Data.ID,
		"amount":         99999,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "EXCEEDS_BALANCE")

	// Customer history shows the sale
	w = server.request(t, http.MethodGet, "/api/v1/credit/customer/%2B254712345678", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), openResp.Data.ID)

	// Summary reflects the outstanding balance
	w = server.request(t, http.MethodGet, "/api/v1/credit/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summaryResp struct {
		Data struct {
			TotalOutstanding string `json:"total_outstanding"`
			TotalCount       int64  `json:"total_count"`
			PartialCount     int64  `json:"partial_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summaryResp))
	assert.Equal(t, "3000", summaryResp.Data.TotalOutstanding)
	assert.Equal(t, int64(1), summaryResp.Data.TotalCount)
	assert.Equal(t, int64(1), summaryResp.Data.PartialCount)

	// Fetch by ID returns the payment history
	w = server.request(t, http.MethodGet, fmt.Sprintf("/api/v1/credit/%s", openResp.Data.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "MPESA")
}
