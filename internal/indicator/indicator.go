package indicator

import (
	"errors"
	"fmt"

	"github.com/yodabytz/Kryptobot/internal/market"
)

const (
	RSIPeriod      = 14
	ATRPeriod      = 14
	FastEMAPeriod  = 12
	SlowEMAPeriod  = 26
	SignalPeriod   = 9
	ShortSMAWindow = 50
	LongSMAWindow  = 200
)

// MinBars is the history length Compute requires. The long SMA has the
// widest window, so it governs.
const MinBars = LongSMAWindow

var ErrInsufficientData = errors.New("insufficient history")

// Snapshot holds the most recent value of every indicator the evaluator
// consumes. It is recomputed from scratch each cycle and never mutated.
type Snapshot struct {
	RSI        float64
	MACDDiff   float64
	MACDSignal float64
	ShortSMA   float64
	LongSMA    float64
	ATR        float64
}

// Compute derives a Snapshot from a price history. It fails when the history
// is shorter than MinBars and has no side effects.
func Compute(h market.History) (Snapshot, error) {
	if len(h) < MinBars {
		return Snapshot{}, fmt.Errorf("%w: need %d bars, got %d", ErrInsufficientData, MinBars, len(h))
	}

	closes := h.Closes()
	diff, signal := macd(closes)

	return Snapshot{
		RSI:        rsi(closes, RSIPeriod),
		MACDDiff:   diff,
		MACDSignal: signal,
		ShortSMA:   sma(closes, ShortSMAWindow),
		LongSMA:    sma(closes, LongSMAWindow),
		ATR:        atr(h, ATRPeriod),
	}, nil
}

// macd returns the histogram (macd line minus signal line) and the signal
// line itself, both at the most recent bar.
func macd(closes []float64) (diff, signal float64) {
	fast := ema(closes, FastEMAPeriod)
	slow := ema(closes, SlowEMAPeriod)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}

	sig := ema(line, SignalPeriod)
	n := len(closes) - 1
	return line[n] - sig[n], sig[n]
}
