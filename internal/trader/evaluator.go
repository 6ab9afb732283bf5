package trader

import (
	"fmt"

	"github.com/yodabytz/Kryptobot/internal/config"
	"github.com/yodabytz/Kryptobot/internal/indicator"
)

type Decision int

const (
	Hold Decision = iota
	Buy
	Sell
)

func (d Decision) String() string {
	switch d {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "hold"
	}
}

// Thresholds are the decision prices for one pair in one cycle, derived from
// the previous close and widened by realized volatility.
type Thresholds struct {
	Buy        float64
	SellLoss   float64
	SellProfit float64
}

// maxPlausiblePrice guards against garbage quotes making it into order math.
const maxPlausiblePrice = 1e10

// Rules holds the signal parameters. The buy side is a conjunction: oversold
// RSI, a deep enough dip, and an uptrend must all hold. The sell side is a
// disjunction: overbought RSI, the stop-loss line, or the take-profit line
// each suffice on their own. The two branches use disjoint RSI ranges, so a
// pair never produces both in one evaluation.
type Rules struct {
	BuyDip     float64
	SellLoss   float64
	SellProfit float64
	Oversold   float64
	Overbought float64
}

func RulesFromConfig(t config.Trading) Rules {
	return Rules{
		BuyDip:     t.BuyDip,
		SellLoss:   t.SellLoss,
		SellProfit: t.SellProfit,
		Oversold:   t.Oversold,
		Overbought: t.Overbought,
	}
}

// Thresholds computes this cycle's decision prices. ATR relative to the
// previous close widens every band, so volatile pairs need bigger moves to
// trigger anything.
func (r Rules) Thresholds(prevClose, atr float64) Thresholds {
	adj := atr / prevClose
	return Thresholds{
		Buy:        prevClose * (1 - r.BuyDip - adj),
		SellLoss:   prevClose * (1 - r.SellLoss - adj),
		SellProfit: prevClose * (1 + r.SellProfit + adj),
	}
}

// Evaluate maps one pair's indicator snapshot and price context to a trade
// decision. tradable is the sellable volume of the pair's base asset; a sell
// can only fire against something actually held.
func (r Rules) Evaluate(price, prevClose float64, snap indicator.Snapshot, tradable float64) (Decision, Thresholds, string) {
	if price <= 0 || price >= maxPlausiblePrice {
		return Hold, Thresholds{}, fmt.Sprintf("implausible price $%.2f", price)
	}

	th := r.Thresholds(prevClose, snap.ATR)
	uptrend := snap.ShortSMA > snap.LongSMA

	if snap.RSI < r.Oversold && price <= th.Buy && uptrend {
		return Buy, th, "oversold dip in uptrend"
	}

	if tradable > 0 {
		switch {
		case snap.RSI > r.Overbought:
			return Sell, th, "overbought"
		case price <= th.SellLoss:
			return Sell, th, "stop-loss"
		case price >= th.SellProfit:
			return Sell, th, "take-profit"
		}
	}

	return Hold, th, ""
}
