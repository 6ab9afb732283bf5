package trader

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yodabytz/Kryptobot/internal/config"
	"github.com/yodabytz/Kryptobot/internal/market"
	"github.com/yodabytz/Kryptobot/internal/state"
)

type submission struct {
	pair   string
	side   market.Side
	volume decimal.Decimal
}

type fakeExchange struct {
	history        market.History
	historyErr     error
	panicOnHistory bool
	historyCalls   int

	balances    market.RawBalances
	balancesErr error

	minOrder decimal.Decimal
	base     string
	baseErr  error

	submitID  string
	submitErr error
	status    string
	submitted []submission
}

func (f *fakeExchange) History(_ context.Context, _ string) (market.History, error) {
	f.historyCalls++
	if f.panicOnHistory {
		panic("history backend gone")
	}
	return f.history, f.historyErr
}

func (f *fakeExchange) Balances(_ context.Context) (market.RawBalances, error) {
	return f.balances, f.balancesErr
}

func (f *fakeExchange) MinOrderSize(_ context.Context, _ string) (decimal.Decimal, error) {
	return f.minOrder, nil
}

func (f *fakeExchange) BaseAsset(_ context.Context, _ string) (string, error) {
	return f.base, f.baseErr
}

func (f *fakeExchange) SubmitOrder(_ context.Context, pair string, side market.Side, volume decimal.Decimal) (string, error) {
	f.submitted = append(f.submitted, submission{pair: pair, side: side, volume: volume})
	return f.submitID, f.submitErr
}

func (f *fakeExchange) OrderStatus(_ context.Context, _ string) (string, error) {
	return f.status, nil
}

func newTestTrader(t *testing.T, fake *fakeExchange, watchlist string) (*Trader, *state.OperationalState, *fakeNotifier) {
	t.Helper()

	cfg := &config.Config{Watchlist: writeWatchlist(t, watchlist)}
	cfg.Trading.RiskPerTrade = 0.01
	cfg.Trading.AllocationCap = 0.20
	cfg.Trading.BuyDip = 0.15
	cfg.Trading.SellLoss = 0.07
	cfg.Trading.SellProfit = 0.25
	cfg.Trading.Oversold = 30
	cfg.Trading.Overbought = 70

	ops := state.New()
	notify := &fakeNotifier{}
	return New(testLogger(), cfg, fake, notify, ops), ops, notify
}

// crashHistory ends in a deep single-bar drop after a high plateau: short SMA
// above long SMA, oversold RSI, and a last close far below every band.
func crashHistory() market.History {
	h := make(market.History, 200)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range h {
		c := 100.0
		switch {
		case i == 199:
			c = 50
		case i >= 150:
			c = 200
		}
		h[i] = market.Bar{
			Time:  start.AddDate(0, 0, i),
			Open:  decimal.NewFromFloat(c),
			High:  decimal.NewFromFloat(c + 1),
			Low:   decimal.NewFromFloat(c - 1),
			Close: decimal.NewFromFloat(c),
		}
	}
	return h
}

// rallyHistory rises every bar, driving RSI to the overbought extreme.
func rallyHistory() market.History {
	h := make(market.History, 200)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range h {
		c := 100 + float64(i)
		h[i] = market.Bar{
			Time:  start.AddDate(0, 0, i),
			Open:  decimal.NewFromFloat(c),
			High:  decimal.NewFromFloat(c + 1),
			Low:   decimal.NewFromFloat(c - 1),
			Close: decimal.NewFromFloat(c),
		}
	}
	return h
}

func logsJoined(ops *state.OperationalState) string {
	return strings.Join(ops.Snapshot().Logs, "\n")
}

func TestCycle_ZeroBuyingPowerSkipsEvaluation(t *testing.T) {
	fake := &fakeExchange{
		balances: market.RawBalances{Total: map[string]float64{"XXBT": 1}},
	}
	tr, ops, _ := newTestTrader(t, fake, "XXBTZUSD\n")

	require.NoError(t, tr.cycle(context.Background()))

	assert.Zero(t, fake.historyCalls)
	assert.Empty(t, fake.submitted)
	assert.Contains(t, logsJoined(ops), "No available buying power")
}

func TestCycle_EmptyWatchlist(t *testing.T) {
	fake := &fakeExchange{}
	tr, ops, _ := newTestTrader(t, fake, "\n")

	require.NoError(t, tr.cycle(context.Background()))

	assert.Zero(t, fake.historyCalls)
	assert.Contains(t, logsJoined(ops), "Watchlist is empty")
}

func TestCycle_BuySignalPlacesOrder(t *testing.T) {
	fake := &fakeExchange{
		history:  crashHistory(),
		balances: market.RawBalances{Tradable: map[string]float64{"ZUSD": 10000}},
		minOrder: decimal.NewFromFloat(0.001),
		base:     "XXBT",
		submitID: "OID-1",
		status:   "closed",
	}
	tr, ops, notify := newTestTrader(t, fake, "XXBTZUSD\n")

	require.NoError(t, tr.cycle(context.Background()))

	require.Len(t, fake.submitted, 1)
	assert.Equal(t, "XXBTZUSD", fake.submitted[0].pair)
	assert.Equal(t, market.SideBuy, fake.submitted[0].side)
	assert.True(t, fake.submitted[0].volume.IsPositive())

	assert.Contains(t, logsJoined(ops), "buy Bitcoin at $50.00")
	require.NotEmpty(t, notify.subjects)
	assert.Contains(t, notify.subjects[0], "Order Placed")
}

func TestCycle_SellSignalClosesPosition(t *testing.T) {
	fake := &fakeExchange{
		history: rallyHistory(),
		balances: market.RawBalances{
			Total:    map[string]float64{"ZUSD": 1000, "XXBT": 2},
			Tradable: map[string]float64{"ZUSD": 1000, "XXBT": 2},
		},
		base:     "XXBT",
		submitID: "OID-2",
		status:   "closed",
	}
	tr, ops, _ := newTestTrader(t, fake, "XXBTZUSD\n")

	require.NoError(t, tr.cycle(context.Background()))

	require.Len(t, fake.submitted, 1)
	assert.Equal(t, market.SideSell, fake.submitted[0].side)
	assert.True(t, fake.submitted[0].volume.Equal(decimal.NewFromInt(2)), "got %s", fake.submitted[0].volume)
	assert.Contains(t, logsJoined(ops), "sell Bitcoin")
}

func TestCycle_FailedSubmissionIsNotRecorded(t *testing.T) {
	fake := &fakeExchange{
		history:   crashHistory(),
		balances:  market.RawBalances{Tradable: map[string]float64{"ZUSD": 10000}},
		minOrder:  decimal.NewFromFloat(0.001),
		base:      "XXBT",
		submitErr: errors.New("insufficient funds"),
	}
	tr, ops, notify := newTestTrader(t, fake, "XXBTZUSD\n")

	require.NoError(t, tr.cycle(context.Background()))

	require.Len(t, fake.submitted, 1)
	assert.Contains(t, logsJoined(ops), "No trades executed in this iteration.")
	require.NotEmpty(t, notify.subjects)
	assert.Contains(t, notify.subjects[0], "Failed to Place")
}

func TestCycle_ShortHistorySkipped(t *testing.T) {
	fake := &fakeExchange{
		history:  crashHistory()[:10],
		balances: market.RawBalances{Tradable: map[string]float64{"ZUSD": 10000}},
	}
	tr, ops, _ := newTestTrader(t, fake, "XXBTZUSD\n")

	require.NoError(t, tr.cycle(context.Background()))

	assert.Empty(t, fake.submitted)
	assert.Contains(t, logsJoined(ops), "Skipping XXBTZUSD")
}

func TestCycle_HistoryErrorSkipsPair(t *testing.T) {
	fake := &fakeExchange{
		historyErr: errors.New("api unavailable"),
		balances:   market.RawBalances{Tradable: map[string]float64{"ZUSD": 10000}},
	}
	tr, ops, _ := newTestTrader(t, fake, "XXBTZUSD\nXETHZUSD\n")

	require.NoError(t, tr.cycle(context.Background()))

	// both pairs were still attempted
	assert.Equal(t, 2, fake.historyCalls)
	assert.Contains(t, logsJoined(ops), "No trades executed in this iteration.")
}

func TestCycle_BalanceFailureDegradesToZero(t *testing.T) {
	fake := &fakeExchange{balancesErr: errors.New("auth failed")}
	tr, ops, _ := newTestTrader(t, fake, "XXBTZUSD\n")

	require.NoError(t, tr.cycle(context.Background()))

	assert.Zero(t, fake.historyCalls)
	assert.Contains(t, logsJoined(ops), "Error fetching balances")
	assert.Contains(t, logsJoined(ops), "No available buying power")
}

func TestCycle_PanicBecomesError(t *testing.T) {
	fake := &fakeExchange{
		panicOnHistory: true,
		balances:       market.RawBalances{Tradable: map[string]float64{"ZUSD": 10000}},
	}
	tr, _, _ := newTestTrader(t, fake, "XXBTZUSD\n")

	err := tr.cycle(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "history backend gone")
}

func TestCycle_PublishesAccountView(t *testing.T) {
	fake := &fakeExchange{
		history: rallyHistory(),
		balances: market.RawBalances{
			Total:    map[string]float64{"ZUSD": 1234.5, "XXBT": 1},
			Tradable: map[string]float64{"ZUSD": 1234.5, "XXBT": 1},
		},
		base:     "XXBT",
		submitID: "OID-3",
		status:   "closed",
	}
	tr, ops, _ := newTestTrader(t, fake, "XXBTZUSD\n")

	require.NoError(t, tr.cycle(context.Background()))

	v := ops.Snapshot()
	assert.Equal(t, 1234.5, v.Funds)
	require.NotEmpty(t, v.Holdings)
	assert.Contains(t, strings.Join(v.Holdings, "\n"), "XXBT")
}

func TestRun_StopsAfterShutdown(t *testing.T) {
	fake := &fakeExchange{}
	tr, ops, _ := newTestTrader(t, fake, "\n")
	ops.RequestShutdown()

	require.NoError(t, tr.Run(context.Background()))

	assert.Contains(t, logsJoined(ops), "Trading stopped gracefully.")
}
