package indicator

import (
	"math"

	"github.com/yodabytz/Kryptobot/internal/market"
)

func ema(data []float64, period int) []float64 {
	if len(data) < period {
		panic("not enough data to compute ema")
	}

	ema := make([]float64, len(data))
	ema[0] = data[0]

	a := 2.0 / (float64(period) + 1)
	for i, val := range data[1:] {
		ema[i+1] = val*a + ema[i]*(1-a)
	}

	return ema
}

func sma(data []float64, window int) float64 {
	sum := 0.0
	for i := len(data) - window; i < len(data); i++ {
		sum += data[i]
	}

	return sum / float64(window)
}

// rsi is the Wilder-smoothed relative strength index over the whole series,
// reported for the most recent bar.
func rsi(closes []float64, period int) float64 {
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		gain, loss := 0.0, 0.0
		if change := closes[i] - closes[i-1]; change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// atr averages the true range over the last period bars.
func atr(h market.History, period int) float64 {
	trs := make([]float64, 0, period)
	for i := len(h) - period; i < len(h); i++ {
		high, _ := h[i].High.Float64()
		low, _ := h[i].Low.Float64()
		prevClose, _ := h[i-1].Close.Float64()

		tr := math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
		trs = append(trs, tr)
	}

	sum := 0.0
	for _, tr := range trs {
		sum += tr
	}

	return sum / float64(period)
}
