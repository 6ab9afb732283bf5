// Package paper simulates the order and balance side of an exchange while
// delegating market data to a real one. It lets the whole pipeline run
// end to end without risking funds.
package paper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/yodabytz/Kryptobot/internal/config"
	"github.com/yodabytz/Kryptobot/internal/market"
)

// cashAsset is the row the account snapshotter reads buying power from.
const cashAsset = "ZUSD"

type marketData interface {
	History(ctx context.Context, pair string) (market.History, error)
	MinOrderSize(ctx context.Context, pair string) (decimal.Decimal, error)
	BaseAsset(ctx context.Context, pair string) (string, error)
}

type Account struct {
	log        *slog.Logger
	data       marketData
	commission *fixedRateCommission

	mu         sync.RWMutex
	cash       decimal.Decimal
	holdings   map[string]decimal.Decimal
	lastCloses map[string]decimal.Decimal
	seq        int
}

func NewAccount(log *slog.Logger, cfg config.Paper, data marketData) *Account {
	return &Account{
		log:        log,
		data:       data,
		commission: newFixedRateCommission(cfg.Commission),
		cash:       decimal.NewFromFloat(cfg.Balance),
		holdings:   make(map[string]decimal.Decimal),
		lastCloses: make(map[string]decimal.Decimal),
	}
}

// History passes through to the live data source and remembers the last
// close so later fills use the price the decision was made against.
func (a *Account) History(ctx context.Context, pair string) (market.History, error) {
	h, err := a.data.History(ctx, pair)
	if err != nil {
		return nil, err
	}

	if bar, err := h.Last(); err == nil {
		a.mu.Lock()
		a.lastCloses[pair] = bar.Close
		a.mu.Unlock()
	}

	return h, nil
}

func (a *Account) MinOrderSize(ctx context.Context, pair string) (decimal.Decimal, error) {
	return a.data.MinOrderSize(ctx, pair)
}

func (a *Account) BaseAsset(ctx context.Context, pair string) (string, error) {
	return a.data.BaseAsset(ctx, pair)
}

func (a *Account) Balances(ctx context.Context) (market.RawBalances, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	raw := market.RawBalances{
		Total:    make(map[string]float64, len(a.holdings)+1),
		Tradable: make(map[string]float64, len(a.holdings)+1),
	}

	cash, _ := a.cash.Float64()
	raw.Total[cashAsset] = cash
	raw.Tradable[cashAsset] = cash

	for asset, vol := range a.holdings {
		v, _ := vol.Float64()
		raw.Total[asset] = v
		raw.Tradable[asset] = v
	}

	return raw, nil
}

// SubmitOrder fills a market order instantly at the last seen close.
func (a *Account) SubmitOrder(ctx context.Context, pair string, side market.Side, volume decimal.Decimal) (string, error) {
	base, err := a.data.BaseAsset(ctx, pair)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base asset for %s: %w", pair, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	price, ok := a.lastCloses[pair]
	if !ok {
		return "", fmt.Errorf("no price seen for %s yet", pair)
	}

	switch side {
	case market.SideBuy:
		cost := price.Mul(volume)
		if cost.GreaterThan(a.cash) {
			return "", fmt.Errorf("not enough funds: need %s, have %s", cost, a.cash)
		}

		a.cash = a.cash.Sub(cost)
		a.holdings[base] = a.holdings[base].Add(a.commission.ApplyOnBuy(volume))

	case market.SideSell:
		held := a.holdings[base]
		if volume.GreaterThan(held) {
			return "", fmt.Errorf("not enough %s: need %s, have %s", base, volume, held)
		}

		a.holdings[base] = held.Sub(volume)
		a.cash = a.cash.Add(a.commission.ApplyOnSell(price.Mul(volume)))

	default:
		return "", fmt.Errorf("unknown order side: %s", side)
	}

	a.seq++
	id := fmt.Sprintf("PAPER-%06d", a.seq)
	a.log.Info("paper order filled",
		slog.String("id", id),
		slog.String("pair", pair),
		slog.String("side", string(side)),
		slog.String("volume", volume.String()),
		slog.String("price", price.String()))

	return id, nil
}

// OrderStatus always reports closed: paper fills are instantaneous.
func (a *Account) OrderStatus(ctx context.Context, orderID string) (string, error) {
	return "closed", nil
}
