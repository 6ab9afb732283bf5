// Package alpaca adapts Alpaca's crypto API to the trader's platform
// contract.
package alpaca

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"
	"github.com/yodabytz/Kryptobot/internal/config"
	"github.com/yodabytz/Kryptobot/internal/market"
)

type Platform struct {
	cfg    config.Alpaca
	client *alpaca.Client
}

func New(cfg config.Alpaca) (*Platform, error) {
	c := alpaca.NewClient(alpaca.ClientOpts{
		BaseURL:   cfg.BaseUrl,
		APIKey:    cfg.ApiKey,
		APISecret: cfg.Secret,
	})

	if _, err := c.GetAccount(); err != nil {
		return nil, fmt.Errorf("failed to reach alpaca account: %w", err)
	}

	return &Platform{cfg: cfg, client: c}, nil
}

func (p *Platform) History(ctx context.Context, pair string) (market.History, error) {
	bars, err := marketdata.GetCryptoBars(pair, marketdata.GetCryptoBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     time.Now().AddDate(0, 0, -365),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch crypto bars for %s: %w", pair, err)
	}

	h := make(market.History, len(bars))
	for i, b := range bars {
		h[i] = market.Bar{
			Time:   b.Timestamp,
			Open:   decimal.NewFromFloat(b.Open),
			High:   decimal.NewFromFloat(b.High),
			Low:    decimal.NewFromFloat(b.Low),
			Close:  decimal.NewFromFloat(b.Close),
			Volume: decimal.NewFromFloat(b.Volume),
		}
	}

	return h, nil
}

func (p *Platform) Balances(ctx context.Context) (market.RawBalances, error) {
	acc, err := p.client.GetAccount()
	if err != nil {
		return market.RawBalances{}, fmt.Errorf("failed to get alpaca account: %w", err)
	}

	positions, err := p.client.GetPositions()
	if err != nil {
		return market.RawBalances{}, fmt.Errorf("failed to get alpaca positions: %w", err)
	}

	raw := market.RawBalances{
		Total:    make(map[string]float64, len(positions)+1),
		Tradable: make(map[string]float64, len(positions)+1),
	}

	cash, _ := acc.BuyingPower.Float64()
	raw.Total["USD"] = cash
	raw.Tradable["USD"] = cash

	for _, pos := range positions {
		asset := baseFromSymbol(pos.Symbol)
		total, _ := pos.Qty.Float64()
		tradable, _ := pos.QtyAvailable.Float64()
		raw.Total[asset] = total
		raw.Tradable[asset] = tradable
	}

	return raw, nil
}

// MinOrderSize returns the configured floor. Alpaca does not expose
// per-pair lot minimums the way Kraken's pair metadata does.
func (p *Platform) MinOrderSize(ctx context.Context, pair string) (decimal.Decimal, error) {
	return decimal.NewFromFloat(p.cfg.MinOrder), nil
}

func (p *Platform) BaseAsset(ctx context.Context, pair string) (string, error) {
	return baseFromSymbol(pair), nil
}

func (p *Platform) SubmitOrder(ctx context.Context, pair string, side market.Side, volume decimal.Decimal) (string, error) {
	s := alpaca.Buy
	if side == market.SideSell {
		s = alpaca.Sell
	}

	ord, err := p.client.PlaceOrder(alpaca.PlaceOrderRequest{
		Side:        s,
		Symbol:      pair,
		Qty:         &volume,
		Type:        alpaca.Market,
		TimeInForce: alpaca.IOC,
	})
	if err != nil {
		return "", fmt.Errorf("failed to place order: %w", err)
	}

	return ord.ID, nil
}

// OrderStatus maps Alpaca's fill reporting onto the status vocabulary the
// executor understands: a fully filled order reads as closed.
func (p *Platform) OrderStatus(ctx context.Context, orderID string) (string, error) {
	ord, err := p.client.GetOrder(orderID)
	if err != nil {
		return "", fmt.Errorf("failed to get order %s: %w", orderID, err)
	}

	if ord.FilledAt != nil {
		return "closed", nil
	}

	return ord.Status, nil
}

// Alpaca crypto symbols are "BASE/QUOTE"; selling the pair disposes of the
// part before the slash.
func baseFromSymbol(symbol string) string {
	if i := strings.Index(symbol, "/"); i > 0 {
		return symbol[:i]
	}

	return symbol
}
