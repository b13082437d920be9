package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func decimalOne() decimal.Decimal { return decimal.NewFromInt(1) }
