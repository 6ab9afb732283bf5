package trader

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/yodabytz/Kryptobot/internal/market"
)

// cashAssets are the asset codes treated as buying power, probed in order.
var cashAssets = []string{"ZUSD", "USD"}

type Holding struct {
	Total    float64
	Tradable float64
}

// AccountSnapshot is the per-cycle view of the account: spendable cash plus
// every held asset, keyed by normalized asset code.
type AccountSnapshot struct {
	BuyingPower float64
	Holdings    map[string]Holding
}

// NewAccountSnapshot normalizes raw platform balances into a snapshot.
// Buying power comes from the tradable cash row, falling back to the total
// row when the platform reports no hold breakdown; a missing cash row means
// zero buying power.
func NewAccountSnapshot(log *slog.Logger, raw market.RawBalances) AccountSnapshot {
	snap := AccountSnapshot{Holdings: make(map[string]Holding)}

	for asset, total := range raw.Total {
		key := normalizeAsset(asset)
		h := snap.Holdings[key]
		h.Total += total
		snap.Holdings[key] = h
	}
	for asset, tradable := range raw.Tradable {
		key := normalizeAsset(asset)
		h := snap.Holdings[key]
		h.Tradable += tradable
		snap.Holdings[key] = h
	}

	for _, cash := range cashAssets {
		h, ok := snap.Holdings[cash]
		if !ok {
			continue
		}
		if _, reported := raw.Tradable[cash]; reported {
			snap.BuyingPower = h.Tradable
		} else {
			snap.BuyingPower = h.Total
		}
		return snap
	}

	log.Warn("no cash balance row found, assuming zero buying power",
		slog.Int("assets", len(snap.Holdings)))
	return snap
}

// Tradable returns the sellable volume of an asset, zero when not held.
func (s AccountSnapshot) Tradable(asset string) float64 {
	return s.Holdings[normalizeAsset(asset)].Tradable
}

// HoldingsLines renders the non-empty holdings sorted by asset code, giving
// the dashboard and the cycle log a stable order.
func (s AccountSnapshot) HoldingsLines() []string {
	assets := make([]string, 0, len(s.Holdings))
	for asset, h := range s.Holdings {
		if h.Total > 0 {
			assets = append(assets, asset)
		}
	}
	if len(assets) == 0 {
		return []string{"No Holdings"}
	}
	sort.Strings(assets)

	lines := make([]string, 0, len(assets))
	for _, asset := range assets {
		h := s.Holdings[asset]
		lines = append(lines, fmt.Sprintf("%s: Total=%.8f | Tradable=%.8f", asset, h.Total, h.Tradable))
	}
	return lines
}

func normalizeAsset(asset string) string {
	return strings.ToUpper(strings.TrimSpace(asset))
}
