package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	byStatus := map[int][]string{
		http.StatusBadRequest: {
			ErrCodeBadRequest, ErrCodeInvalidJSON, ErrCodeValidation,
			"INVALID_AMOUNT", "EXCEEDS_BALANCE", "INVALID_CUSTOMER_PHONE",
		},
		http.StatusUnauthorized: {
			ErrCodeUnauthorized, "INVALID_CREDENTIALS", "TOKEN_EXPIRED", "TOKEN_MAX_REFRESH",
		},
		http.StatusForbidden:           {ErrCodeForbidden, "ACCOUNT_DEACTIVATED"},
		http.StatusNotFound:            {ErrCodeNotFound, "USER_NOT_FOUND"},
		http.StatusConflict:            {ErrCodeConflict, "ALREADY_EXISTS", "USERNAME_EXISTS", "CONCURRENCY_CONFLICT"},
		http.StatusUnprocessableEntity: {"INVALID_STATE"},
		http.StatusTooManyRequests:     {ErrCodeRateLimited},
		http.StatusInternalServerError: {ErrCodeInternal, "PASSWORD_HASH_ERROR"},
	}

	for status, codes := range byStatus {
		for _, code := range codes {
			t.Run(code, func(t *testing.T) {
				assert.Equal(t, status, GetHTTPStatus(code))
			})
		}
	}

	t.Run("unknown code maps to 500", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("NO_SUCH_CODE"))
	})
}

func TestErrorResponses(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		before := time.Now()
		resp := NewErrorResponse(ErrCodeNotFound, "Resource not found")

		assert.False(t, resp.Success)
		assert.Nil(t, resp.Data)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
		assert.Equal(t, "Resource not found", resp.Error.Message)
		assert.Empty(t, resp.Error.RequestID)
		assert.WithinRange(t, resp.Error.Timestamp, before, time.Now())
	})

	t.Run("with request id", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID(ErrCodeConflict, "Sale already open", "req-123-456")

		require.NotNil(t, resp.Error)
		assert.Equal(t, "req-123-456", resp.Error.RequestID)
	})

	t.Run("validation details", func(t *testing.T) {
		details := []ValidationDetail{
			{Field: "customer_phone", Message: "Customer phone is required"},
			{Field: "total_amount", Message: "Must be greater than 0"},
		}
		resp := NewValidationErrorResponse("Request validation failed", "req-789", details)

		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-789", resp.Error.RequestID)
		require.Len(t, resp.Error.Details, 2)
		assert.Equal(t, "customer_phone", resp.Error.Details[0].Field)
		assert.Equal(t, "Must be greater than 0", resp.Error.Details[1].Message)
	})

	t.Run("round-trips through JSON", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Sale not found", "req-test-123")

		data, err := json.Marshal(resp)
		require.NoError(t, err)

		var decoded Response
		require.NoError(t, json.Unmarshal(data, &decoded))

		assert.False(t, decoded.Success)
		require.NotNil(t, decoded.Error)
		assert.Equal(t, ErrCodeNotFound, decoded.Error.Code)
		assert.Equal(t, "Sale not found", decoded.Error.Message)
		assert.Equal(t, "req-test-123", decoded.Error.RequestID)
	})
}

func TestSuccessResponses(t *testing.T) {
	t.Run("bare data", func(t *testing.T) {
		resp := NewSuccessResponse(map[string]string{"status": "paid"})

		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Data)
		assert.Nil(t, resp.Error)
		assert.Nil(t, resp.Meta)
	})

	t.Run("with meta", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta([]string{"sale-1", "sale-2"}, 100, 1, 10)

		assert.True(t, resp.Success)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(100), resp.Meta.Total)
		assert.Equal(t, 1, resp.Meta.Page)
		assert.Equal(t, 10, resp.Meta.PageSize)
		assert.Equal(t, 10, resp.Meta.TotalPages)
	})
}

func TestSuccessResponseMetaPageMath(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		pageSize  int
		wantPages int
		wantSize  int
	}{
		{"exact pages", 100, 10, 10, 10},
		{"partial last page", 101, 10, 11, 10},
		{"empty result", 0, 10, 0, 10},
		{"single short page", 9, 10, 1, 10},
		{"boundary at one page", 10, 10, 1, 10},
		{"boundary plus one", 11, 10, 2, 10},
		{"zero size defaults to 20", 100, 0, 5, 20},
		{"negative size defaults to 20", 100, -1, 5, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewSuccessResponseWithMeta(nil, tt.total, 1, tt.pageSize)
			require.NotNil(t, resp.Meta)
			assert.Equal(t, tt.wantPages, resp.Meta.TotalPages)
			assert.Equal(t, tt.wantSize, resp.Meta.PageSize)
		})
	}
}
