// Package kraken is a thin REST client for the Kraken spot API covering the
// calls the trader needs: OHLC history, asset pair metadata, balances and
// market orders.
package kraken

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yodabytz/Kryptobot/internal/market"
)

const DefaultBaseURL = "https://api.kraken.com"

// dailyInterval is the OHLC granularity in minutes.
const dailyInterval = 1440

var errNoCredentials = errors.New("private API call requires credentials")

type Client struct {
	log     *slog.Logger
	baseURL string
	key     string
	secret  []byte
	http    *http.Client

	mu    sync.Mutex
	pairs map[string]pairInfo
}

type pairInfo struct {
	base     string
	orderMin decimal.Decimal
}

// New creates an authenticated client. The secret is Kraken's base64 encoded
// private key.
func New(log *slog.Logger, baseURL, key, secret string) (*Client, error) {
	decoded, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}

	c, err := NewPublic(log, baseURL)
	if err != nil {
		return nil, err
	}

	c.key = key
	c.secret = decoded
	return c, nil
}

// NewPublic creates a client restricted to public endpoints. The paper
// platform uses it as its market data source.
func NewPublic(log *slog.Logger, baseURL string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	return &Client{
		log:     log,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		pairs:   make(map[string]pairInfo),
	}, nil
}

func (c *Client) History(ctx context.Context, pair string) (market.History, error) {
	query := url.Values{}
	query.Set("pair", pair)
	query.Set("interval", strconv.Itoa(dailyInterval))

	var result map[string]json.RawMessage
	if err := c.public(ctx, "/0/public/OHLC", query, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch OHLC for %s: %w", pair, err)
	}

	for key, raw := range result {
		if key == "last" {
			continue
		}

		var rows [][]any
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("failed to decode OHLC rows for %s: %w", pair, err)
		}

		h := make(market.History, 0, len(rows))
		for _, row := range rows {
			bar, err := parseOHLCRow(row)
			if err != nil {
				return nil, fmt.Errorf("bad OHLC row for %s: %w", pair, err)
			}
			h = append(h, bar)
		}

		return h, nil
	}

	return nil, fmt.Errorf("no OHLC data returned for %s", pair)
}

// parseOHLCRow decodes one Kraken OHLC entry:
// [time, open, high, low, close, vwap, volume, count]. Prices arrive as
// strings, the timestamp as a number.
func parseOHLCRow(row []any) (market.Bar, error) {
	if len(row) < 8 {
		return market.Bar{}, fmt.Errorf("expected 8 fields, got %d", len(row))
	}

	ts, ok := row[0].(float64)
	if !ok {
		return market.Bar{}, fmt.Errorf("unexpected timestamp type %T", row[0])
	}

	prices := make([]decimal.Decimal, 4)
	for i := 1; i <= 4; i++ {
		s, ok := row[i].(string)
		if !ok {
			return market.Bar{}, fmt.Errorf("unexpected price type %T at field %d", row[i], i)
		}

		d, err := decimal.NewFromString(s)
		if err != nil {
			return market.Bar{}, fmt.Errorf("failed to parse price %q: %w", s, err)
		}
		prices[i-1] = d
	}

	volume := decimal.Zero
	if s, ok := row[6].(string); ok {
		if d, err := decimal.NewFromString(s); err == nil {
			volume = d
		}
	}

	return market.Bar{
		Time:   time.Unix(int64(ts), 0),
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: volume,
	}, nil
}

func (c *Client) Balances(ctx context.Context) (market.RawBalances, error) {
	var total map[string]string
	if err := c.private(ctx, "/0/private/Balance", url.Values{}, &total); err != nil {
		return market.RawBalances{}, fmt.Errorf("failed to fetch balance: %w", err)
	}

	var ext map[string]struct {
		Balance   string `json:"balance"`
		HoldTrade string `json:"hold_trade"`
	}
	if err := c.private(ctx, "/0/private/BalanceEx", url.Values{}, &ext); err != nil {
		return market.RawBalances{}, fmt.Errorf("failed to fetch extended balance: %w", err)
	}

	raw := market.RawBalances{
		Total:    make(map[string]float64, len(total)),
		Tradable: make(map[string]float64, len(ext)),
	}
	for asset, vol := range total {
		v, err := strconv.ParseFloat(vol, 64)
		if err != nil {
			return market.RawBalances{}, fmt.Errorf("failed to parse balance for %s: %w", asset, err)
		}
		raw.Total[asset] = v
	}
	for asset, b := range ext {
		bal, err := strconv.ParseFloat(b.Balance, 64)
		if err != nil {
			return market.RawBalances{}, fmt.Errorf("failed to parse extended balance for %s: %w", asset, err)
		}

		hold := 0.0
		if b.HoldTrade != "" {
			hold, err = strconv.ParseFloat(b.HoldTrade, 64)
			if err != nil {
				return market.RawBalances{}, fmt.Errorf("failed to parse trade hold for %s: %w", asset, err)
			}
		}
		raw.Tradable[asset] = bal - hold
	}

	return raw, nil
}

func (c *Client) MinOrderSize(ctx context.Context, pair string) (decimal.Decimal, error) {
	info, err := c.assetPair(ctx, pair)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return info.orderMin, nil
}

func (c *Client) BaseAsset(ctx context.Context, pair string) (string, error) {
	info, err := c.assetPair(ctx, pair)
	if err != nil {
		return "", err
	}

	return info.base, nil
}

func (c *Client) SubmitOrder(ctx context.Context, pair string, side market.Side, volume decimal.Decimal) (string, error) {
	form := url.Values{}
	form.Set("pair", pair)
	form.Set("type", string(side))
	form.Set("ordertype", "market")
	form.Set("volume", volume.String())

	var result struct {
		Txid []string `json:"txid"`
	}
	if err := c.private(ctx, "/0/private/AddOrder", form, &result); err != nil {
		return "", fmt.Errorf("failed to place %s order for %s: %w", side, pair, err)
	}

	if len(result.Txid) == 0 {
		return "", fmt.Errorf("no order id returned for %s %s order", pair, side)
	}

	return result.Txid[0], nil
}

func (c *Client) OrderStatus(ctx context.Context, orderID string) (string, error) {
	form := url.Values{}
	form.Set("txid", orderID)

	var result map[string]struct {
		Status string `json:"status"`
	}
	if err := c.private(ctx, "/0/private/QueryOrders", form, &result); err != nil {
		return "", fmt.Errorf("failed to query order %s: %w", orderID, err)
	}

	info, ok := result[orderID]
	if !ok {
		return "", fmt.Errorf("order %s not found", orderID)
	}

	return info.Status, nil
}

// assetPair returns cached pair metadata, fetching it on first use.
func (c *Client) assetPair(ctx context.Context, pair string) (pairInfo, error) {
	c.mu.Lock()
	info, ok := c.pairs[pair]
	c.mu.Unlock()
	if ok {
		return info, nil
	}

	query := url.Values{}
	query.Set("pair", pair)

	var result map[string]struct {
		Base     string `json:"base"`
		OrderMin string `json:"ordermin"`
	}
	if err := c.public(ctx, "/0/public/AssetPairs", query, &result); err != nil {
		return pairInfo{}, fmt.Errorf("failed to fetch asset pair %s: %w", pair, err)
	}

	for _, p := range result {
		orderMin, err := decimal.NewFromString(p.OrderMin)
		if err != nil {
			return pairInfo{}, fmt.Errorf("failed to parse ordermin for %s: %w", pair, err)
		}

		info = pairInfo{base: strings.ToUpper(strings.TrimSpace(p.Base)), orderMin: orderMin}
		c.mu.Lock()
		c.pairs[pair] = info
		c.mu.Unlock()
		return info, nil
	}

	return pairInfo{}, fmt.Errorf("unknown asset pair: %s", pair)
}
