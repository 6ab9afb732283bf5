package market

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// RawBalances mirrors the exchange's balance tables before normalization:
// per-asset totals and per-asset tradable volumes. Empty maps are a valid
// answer for an unfunded account.
type RawBalances struct {
	Total    map[string]float64
	Tradable map[string]float64
}
