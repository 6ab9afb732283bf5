package trader

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrDegenerateStop = errors.New("stop-loss is not below the current price")
	ErrBelowMinOrder  = errors.New("volume is below the exchange minimum")
)

// Sizing is an accepted buy size together with the stop-loss used to derive it.
type Sizing struct {
	Volume   decimal.Decimal
	StopLoss float64
}

// Sizer turns a buy signal into an order volume. Risk per trade is a fraction
// of buying power, and the ATR-based stop converts that risk into units.
// AllocationCap bounds the total notional a single cycle may spend.
type Sizer struct {
	RiskPerTrade  float64
	AllocationCap float64
}

// Size computes the buy volume for one pair. allocated is the notional spent
// by earlier buys in the same cycle; the cap applies to the sum.
func (s Sizer) Size(buyingPower, price, atr, allocated float64, minOrder decimal.Decimal) (Sizing, error) {
	stop := price - 2*atr
	if stop >= price {
		return Sizing{}, fmt.Errorf("%w: price $%.2f, atr %.4f", ErrDegenerateStop, price, atr)
	}

	risk := buyingPower * s.RiskPerTrade
	bySignal := risk / (price - stop)
	byBudget := (buyingPower*s.AllocationCap - allocated) / price

	volume := decimal.NewFromFloat(math.Min(bySignal, byBudget)).Round(8)
	if !volume.IsPositive() || volume.LessThan(minOrder) {
		return Sizing{}, fmt.Errorf("%w: %s < %s", ErrBelowMinOrder, volume, minOrder)
	}

	return Sizing{Volume: volume, StopLoss: stop}, nil
}
