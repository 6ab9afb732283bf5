package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_Trading(t *testing.T) {
	cfg, err := Read(strings.NewReader(`
watchlist: watchlist.txt
debug_dir: charts
trading:
    cycle_interval: 2m
    cooldown: 30s
    pace: 1s
    settle_delay: 3s
    risk_per_trade: 0.02
    allocation_cap: 0.25
    buy_dip: 0.1
    sell_loss: 0.05
    sell_profit: 0.3
    oversold: 25
    overbought: 75
`))

	require.NoError(t, err)

	assert.Equal(t, "watchlist.txt", cfg.Watchlist)
	assert.Equal(t, "charts", cfg.DebugDir)
	assert.Equal(t, 2*time.Minute, cfg.Trading.CycleInterval)
	assert.Equal(t, 30*time.Second, cfg.Trading.Cooldown)
	assert.Equal(t, time.Second, cfg.Trading.Pace)
	assert.Equal(t, 3*time.Second, cfg.Trading.SettleDelay)
	assert.Equal(t, 0.02, cfg.Trading.RiskPerTrade)
	assert.Equal(t, 0.25, cfg.Trading.AllocationCap)
	assert.Equal(t, 0.1, cfg.Trading.BuyDip)
	assert.Equal(t, 0.05, cfg.Trading.SellLoss)
	assert.Equal(t, 0.3, cfg.Trading.SellProfit)
	assert.Equal(t, 25.0, cfg.Trading.Oversold)
	assert.Equal(t, 75.0, cfg.Trading.Overbought)
}

func TestRead_TradingDefaults(t *testing.T) {
	cfg, err := Read(strings.NewReader(`
watchlist: watchlist.txt
`))

	require.NoError(t, err)

	assert.Equal(t, 300*time.Second, cfg.Trading.CycleInterval)
	assert.Equal(t, 60*time.Second, cfg.Trading.Cooldown)
	assert.Equal(t, 2500*time.Millisecond, cfg.Trading.Pace)
	assert.Equal(t, 2500*time.Millisecond, cfg.Trading.SettleDelay)
	assert.Equal(t, 0.01, cfg.Trading.RiskPerTrade)
	assert.Equal(t, 0.20, cfg.Trading.AllocationCap)
	assert.Equal(t, 0.15, cfg.Trading.BuyDip)
	assert.Equal(t, 0.07, cfg.Trading.SellLoss)
	assert.Equal(t, 0.25, cfg.Trading.SellProfit)
	assert.Equal(t, 30.0, cfg.Trading.Oversold)
	assert.Equal(t, 70.0, cfg.Trading.Overbought)
}

func TestRead_KrakenPlatform(t *testing.T) {
	cfg, err := Read(strings.NewReader(`
platform:
    kraken:
        base_url: https://api.kraken.test
`))

	require.NoError(t, err)

	kraken, ok := cfg.PlatformRef.Platform.(Kraken)
	require.True(t, ok)

	assert.Equal(t, "https://api.kraken.test", kraken.BaseURL)
}

func TestRead_PaperPlatform(t *testing.T) {
	cfg, err := Read(strings.NewReader(`
platform:
    paper:
        balance: 10000
        commission: 0.0026
`))

	require.NoError(t, err)

	paper, ok := cfg.PlatformRef.Platform.(Paper)
	require.True(t, ok)

	assert.Equal(t, 10000.0, paper.Balance)
	assert.Equal(t, 0.0026, paper.Commission)
}

func TestRead_AlpacaPlatform(t *testing.T) {
	cfg, err := Read(strings.NewReader(`
platform:
    alpaca:
        base_url: https://paper-api.alpaca.test
        api_key: key
        secret: secret
        min_order: 0.0001
`))

	require.NoError(t, err)

	alpaca, ok := cfg.PlatformRef.Platform.(Alpaca)
	require.True(t, ok)

	assert.Equal(t, "https://paper-api.alpaca.test", alpaca.BaseUrl)
	assert.Equal(t, "key", alpaca.ApiKey)
	assert.Equal(t, "secret", alpaca.Secret)
	assert.Equal(t, 0.0001, alpaca.MinOrder)
}

func TestRead_UnknownPlatform(t *testing.T) {
	_, err := Read(strings.NewReader(`
platform:
    binance:
        base_url: https://api.binance.test
`))

	assert.Error(t, err)
}

func TestRead_Notify(t *testing.T) {
	cfg, err := Read(strings.NewReader(`
notify:
    smtp_host: smtp.gmail.com
    smtp_port: 587
    from: bot@example.com
    to: owner@example.com
`))

	require.NoError(t, err)

	assert.Equal(t, "smtp.gmail.com", cfg.Notify.SMTPHost)
	assert.Equal(t, 587, cfg.Notify.SMTPPort)
	assert.Equal(t, "bot@example.com", cfg.Notify.From)
	assert.Equal(t, "owner@example.com", cfg.Notify.To)
}
