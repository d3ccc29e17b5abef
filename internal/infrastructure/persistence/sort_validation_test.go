package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreditSaleOrderClause(t *testing.T) {
	tests := []struct {
		name     string
		orderBy  string
		orderDir string
		want     string
	}{
		{"defaults to newest first", "", "", "created_at DESC"},
		{"whitelisted column ascending", "customer_phone", "asc", "customer_phone ASC"},
		{"mixed-case direction", "total_amount", "AsC", "total_amount ASC"},
		{"whitespace trimmed", "  balance_amount ", " desc ", "balance_amount DESC"},
		{"unknown column falls back", "password_hash", "asc", "created_at ASC"},
		{"injection attempt falls back", "created_at; DROP TABLE credit_sales", "", "created_at DESC"},
		{"injection in direction falls back", "status", "asc; DELETE FROM users", "status DESC"},
		{"garbage direction defaults", "paid_amount", "sideways", "paid_amount DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, creditSaleOrderClause(tt.orderBy, tt.orderDir))
		})
	}
}
