package spanstore

import (
	"time"

	"github.com/shopspring/decimal"
)

// DurationMs converts d to milliseconds with microsecond precision.
func DurationMs(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(d.Microseconds()).Shift(-3)
}
