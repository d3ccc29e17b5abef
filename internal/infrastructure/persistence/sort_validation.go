package persistence

import (
	"slices"
	"strings"
)

// creditSaleSortColumns lists the columns credit sale listings may
// order by. Anything outside the list falls back to created_at so
// caller-supplied sort fields can never reach the SQL text.
var creditSaleSortColumns = []string{
	"id",
	"created_at",
	"updated_at",
	"customer_phone",
	"customer_name",
	"total_amount",
	"paid_amount",
	"balance_amount",
	"status",
}

// creditSaleOrderClause builds a safe ORDER BY fragment from filter
// sort options. Direction defaults to DESC, newest first.
func creditSaleOrderClause(orderBy, orderDir string) string {
	column := "created_at"
	if candidate := strings.TrimSpace(orderBy); slices.Contains(creditSaleSortColumns, candidate) {
		column = candidate
	}

	direction := "DESC"
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}
