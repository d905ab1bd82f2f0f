package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carlosandre007/escala/internal/calendar"
)

const dbTimeout = 5 * time.Second

// FormatAmount renders an amount with two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatDay renders a window day as "Tue 12".
func FormatDay(d calendar.Date) string {
	return d.Time().Format("Mon 02")
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
