package market

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Bar struct {
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

// History is an ordered run of OHLC bars for one pair, ascending by time.
type History []Bar

var ErrEmptyHistory = errors.New("empty price history")

func (h History) Last() (Bar, error) {
	if len(h) == 0 {
		return Bar{}, ErrEmptyHistory
	}

	return h[len(h)-1], nil
}

// LastClose returns the most recent close as a float.
func (h History) LastClose() (float64, error) {
	b, err := h.Last()
	if err != nil {
		return 0, err
	}

	v, _ := b.Close.Float64()
	return v, nil
}

// PrevClose returns the close of the bar before the most recent one.
func (h History) PrevClose() (float64, error) {
	if len(h) < 2 {
		return 0, fmt.Errorf("history has %d bars, need at least 2", len(h))
	}

	v, _ := h[len(h)-2].Close.Float64()
	return v, nil
}

func (h History) Closes() []float64 {
	closes := make([]float64, len(h))
	for i, b := range h {
		closes[i], _ = b.Close.Float64()
	}

	return closes
}

// Validate rejects histories the indicator pipeline cannot work with:
// no bars, a non-positive last close, or bars out of time order.
func (h History) Validate() error {
	if len(h) == 0 {
		return ErrEmptyHistory
	}

	last := h[len(h)-1]
	if !last.Close.IsPositive() {
		return fmt.Errorf("last close %s is not positive", last.Close)
	}

	for i := 1; i < len(h); i++ {
		if h[i].Time.Before(h[i-1].Time) {
			return fmt.Errorf("bars out of order at index %d", i)
		}
	}

	return nil
}
