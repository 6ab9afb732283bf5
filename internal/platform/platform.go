// Package platform abstracts the exchange behind the handful of calls the
// trading core needs. Implementations are swappable: a live Kraken client, a
// paper account fed by live market data, or Alpaca's crypto API.
package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"github.com/yodabytz/Kryptobot/internal/config"
	"github.com/yodabytz/Kryptobot/internal/market"
	"github.com/yodabytz/Kryptobot/internal/platform/alpaca"
	"github.com/yodabytz/Kryptobot/internal/platform/kraken"
	"github.com/yodabytz/Kryptobot/internal/platform/paper"
)

type Platform interface {
	// History fetches daily OHLC bars for a pair, ascending by time.
	History(ctx context.Context, pair string) (market.History, error)

	// Balances returns the raw balance tables. An empty account is not an
	// error.
	Balances(ctx context.Context) (market.RawBalances, error)

	// MinOrderSize returns the exchange-enforced minimum volume for a pair.
	MinOrderSize(ctx context.Context, pair string) (decimal.Decimal, error)

	// SubmitOrder places a market order and returns the exchange order id.
	SubmitOrder(ctx context.Context, pair string, side market.Side, volume decimal.Decimal) (string, error)

	// OrderStatus reports the exchange's status string for an order id.
	OrderStatus(ctx context.Context, orderID string) (string, error)

	// BaseAsset resolves a pair to its base asset code using exchange pair
	// metadata. Pair names do not reliably embed the asset code, so this is
	// the only sanctioned way to find what a sell would dispose of.
	BaseAsset(ctx context.Context, pair string) (string, error)
}

func Create(log *slog.Logger, cfg config.Config) (Platform, error) {
	if krakenCfg, ok := cfg.PlatformRef.Platform.(config.Kraken); ok {
		key := os.Getenv("KRAKEN_API_KEY")
		secret := os.Getenv("KRAKEN_PRIVATE_KEY")
		if key == "" || secret == "" {
			return nil, errors.New("kraken API keys not found, set KRAKEN_API_KEY and KRAKEN_PRIVATE_KEY")
		}

		c, err := kraken.New(log, krakenCfg.BaseURL, key, secret)
		if err != nil {
			return nil, fmt.Errorf("failed to create kraken client: %w", err)
		}

		return c, nil
	}

	if paperCfg, ok := cfg.PlatformRef.Platform.(config.Paper); ok {
		data, err := kraken.NewPublic(log, paperCfg.DataURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create market data client: %w", err)
		}

		return paper.NewAccount(log, paperCfg, data), nil
	}

	if alpacaCfg, ok := cfg.PlatformRef.Platform.(config.Alpaca); ok {
		p, err := alpaca.New(alpacaCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create alpaca platform: %w", err)
		}

		return p, nil
	}

	return nil, errors.New("unknown trading platform")
}
