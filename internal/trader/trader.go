// Package trader implements the trading worker: it walks the watchlist once
// per cycle, turns daily OHLC history into indicator snapshots, and places
// market orders when the rules fire. All progress is reported through the
// shared operational state so the dashboard can render it.
package trader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yodabytz/Kryptobot/internal/config"
	"github.com/yodabytz/Kryptobot/internal/indicator"
	"github.com/yodabytz/Kryptobot/internal/market"
	"github.com/yodabytz/Kryptobot/internal/state"
)

type exchange interface {
	History(ctx context.Context, pair string) (market.History, error)
	Balances(ctx context.Context) (market.RawBalances, error)
	MinOrderSize(ctx context.Context, pair string) (decimal.Decimal, error)
	BaseAsset(ctx context.Context, pair string) (string, error)
	SubmitOrder(ctx context.Context, pair string, side market.Side, volume decimal.Decimal) (string, error)
	OrderStatus(ctx context.Context, orderID string) (string, error)
}

// TradeRecord is one accepted submission, kept for the end-of-cycle summary.
type TradeRecord struct {
	Side     market.Side
	Pair     market.Pair
	Price    float64
	Time     time.Time
	StopLoss float64
}

type Trader struct {
	log       *slog.Logger
	cfg       config.Trading
	watchlist string
	debugDir  string
	exchange  exchange
	notify    notifier
	ops       *state.OperationalState

	rules Rules
	sizer Sizer
	exec  *Executor
}

func New(log *slog.Logger, cfg *config.Config, exchange exchange, notify notifier, ops *state.OperationalState) *Trader {
	return &Trader{
		log:       log,
		cfg:       cfg.Trading,
		watchlist: cfg.Watchlist,
		debugDir:  cfg.DebugDir,
		exchange:  exchange,
		notify:    notify,
		ops:       ops,
		rules:     RulesFromConfig(cfg.Trading),
		sizer:     Sizer{RiskPerTrade: cfg.Trading.RiskPerTrade, AllocationCap: cfg.Trading.AllocationCap},
		exec:      NewExecutor(log, exchange, notify, ops, cfg.Trading.SettleDelay),
	}
}

// Run loops cycles until shutdown is requested. Anything a cycle does not
// handle itself is treated as unexpected: it is reported, the loop cools down
// and then carries on. The worker never exits on its own.
func (t *Trader) Run(ctx context.Context) error {
	t.ops.AppendLog("Trading started.")

	for !t.ops.ShutdownRequested() {
		if err := t.cycle(ctx); err != nil {
			t.log.Error("unexpected error in trading cycle", slog.Any("error", err))
			t.ops.AppendLog(fmt.Sprintf("Warning: Unexpected error: %v", err))
			t.notify.Notify("Kryptobot: Unexpected Error",
				fmt.Sprintf("The trading loop hit an unexpected error and will resume after cooldown.\nError: %v", err))
			t.ops.Sleep(t.cfg.Cooldown)
		}
	}

	t.ops.AppendLog("Trading stopped gracefully.")
	return nil
}

func (t *Trader) cycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	pairs, err := LoadWatchlist(t.watchlist)
	if err != nil {
		t.ops.AppendLog(fmt.Sprintf("Error reading watchlist: %v", err))
		pairs = nil
	}
	if len(pairs) == 0 {
		t.ops.AppendLog("Watchlist is empty. Sleeping before the next attempt.")
		t.ops.Sleep(t.cfg.CycleInterval)
		return nil
	}
	t.ops.AppendLog(fmt.Sprintf("Loaded watchlist with %d assets.", len(pairs)))

	acct := t.refreshAccount(ctx)
	if acct.BuyingPower <= 0 {
		t.ops.AppendLog("No available buying power. Please fund your account.")
		t.ops.Sleep(t.cfg.CycleInterval)
		return nil
	}

	allocated := 0.0
	var trades []TradeRecord
	for _, symbol := range pairs {
		if t.ops.ShutdownRequested() {
			break
		}
		if !t.ops.Sleep(t.cfg.Pace) {
			break
		}

		rec, notional := t.checkPair(ctx, market.NewPair(symbol), acct, allocated)
		if rec != nil {
			trades = append(trades, *rec)
			allocated += notional
		}
	}

	t.summarize(trades)
	t.ops.Sleep(t.cfg.CycleInterval)
	return nil
}

// refreshAccount pulls balances and publishes the account view. A platform
// failure degrades to an empty snapshot, which reads as zero buying power.
func (t *Trader) refreshAccount(ctx context.Context) AccountSnapshot {
	raw, err := t.exchange.Balances(ctx)
	if err != nil {
		t.log.Error("failed to fetch balances", slog.Any("error", err))
		t.ops.AppendLog(fmt.Sprintf("Error fetching balances: %v", err))
		raw = market.RawBalances{}
	}

	acct := NewAccountSnapshot(t.log, raw)
	lines := acct.HoldingsLines()

	t.ops.AppendLog(fmt.Sprintf("Available buying power: $%.2f", acct.BuyingPower))
	t.ops.AppendLog("Current Holdings: " + strings.Join(lines, " | "))
	t.ops.SetAccountView(acct.BuyingPower, lines)
	return acct
}

// checkPair evaluates one pair and executes the resulting decision. It
// returns the trade record and spent notional when a submission was accepted.
func (t *Trader) checkPair(ctx context.Context, pair market.Pair, acct AccountSnapshot, allocated float64) (*TradeRecord, float64) {
	t.ops.AppendLog("Checking " + pair.Name)

	h, err := t.exchange.History(ctx, pair.Symbol)
	if err != nil {
		t.ops.AppendLog(fmt.Sprintf("Skipping %s: %v", pair.Symbol, err))
		return nil, 0
	}
	if err := h.Validate(); err != nil {
		t.ops.AppendLog(fmt.Sprintf("Skipping %s: %v", pair.Symbol, err))
		return nil, 0
	}

	snap, err := indicator.Compute(h)
	if err != nil {
		t.ops.AppendLog(fmt.Sprintf("Skipping %s: %v", pair.Symbol, err))
		return nil, 0
	}

	price, _ := h.LastClose()
	prev, err := h.PrevClose()
	if err != nil {
		t.ops.AppendLog(fmt.Sprintf("Skipping %s: %v", pair.Symbol, err))
		return nil, 0
	}

	tradable := t.tradableVolume(ctx, pair, acct)
	decision, th, reason := t.rules.Evaluate(price, prev, snap, tradable)

	if t.debugDir != "" {
		if err := dumpDecisionChart(t.debugDir, pair, h, th, decision); err != nil {
			t.log.Warn("failed to dump decision chart",
				slog.String("pair", pair.Symbol),
				slog.Any("error", err))
		}
	}

	switch decision {
	case Buy:
		t.ops.AppendLog(fmt.Sprintf("Buy signal for %s (%s): price $%.2f <= $%.2f, RSI %.1f",
			pair.Name, reason, price, th.Buy, snap.RSI))
		return t.buy(ctx, pair, price, snap.ATR, acct.BuyingPower, allocated)
	case Sell:
		t.ops.AppendLog(fmt.Sprintf("Sell signal for %s (%s): price $%.2f, RSI %.1f",
			pair.Name, reason, price, snap.RSI))
		return t.sell(ctx, pair, price, tradable)
	default:
		if reason != "" {
			t.ops.AppendLog(fmt.Sprintf("Holding %s: %s", pair.Name, reason))
		}
		return nil, 0
	}
}

// tradableVolume resolves the pair's base asset through exchange metadata and
// looks up how much of it is sellable. Metadata failure means the sell side
// simply cannot fire this cycle.
func (t *Trader) tradableVolume(ctx context.Context, pair market.Pair, acct AccountSnapshot) float64 {
	base, err := t.exchange.BaseAsset(ctx, pair.Symbol)
	if err != nil {
		t.log.Warn("failed to resolve base asset",
			slog.String("pair", pair.Symbol),
			slog.Any("error", err))
		return 0
	}
	return acct.Tradable(base)
}

func (t *Trader) buy(ctx context.Context, pair market.Pair, price, atr, buyingPower, allocated float64) (*TradeRecord, float64) {
	minOrder, err := t.exchange.MinOrderSize(ctx, pair.Symbol)
	if err != nil {
		t.ops.AppendLog(fmt.Sprintf("Skipping buy for %s: %v", pair.Symbol, err))
		return nil, 0
	}

	sizing, err := t.sizer.Size(buyingPower, price, atr, allocated, minOrder)
	if err != nil {
		t.ops.AppendLog(fmt.Sprintf("Skipping buy for %s: %v", pair.Symbol, err))
		return nil, 0
	}

	ord := t.exec.Execute(ctx, pair, market.SideBuy, sizing.Volume)
	if ord.Status == StatusFailed {
		return nil, 0
	}

	vol, _ := sizing.Volume.Float64()
	rec := &TradeRecord{
		Side:     market.SideBuy,
		Pair:     pair,
		Price:    price,
		Time:     time.Now(),
		StopLoss: sizing.StopLoss,
	}
	return rec, vol * price
}

func (t *Trader) sell(ctx context.Context, pair market.Pair, price, tradable float64) (*TradeRecord, float64) {
	volume := decimal.NewFromFloat(tradable).Round(8)
	if !volume.IsPositive() {
		return nil, 0
	}

	ord := t.exec.Execute(ctx, pair, market.SideSell, volume)
	if ord.Status == StatusFailed {
		return nil, 0
	}

	rec := &TradeRecord{
		Side:  market.SideSell,
		Pair:  pair,
		Price: price,
		Time:  time.Now(),
	}
	return rec, 0
}

func (t *Trader) summarize(trades []TradeRecord) {
	t.ops.AppendLog(strings.Repeat("-", 40))
	if len(trades) == 0 {
		t.ops.AppendLog("No trades executed in this iteration.")
		return
	}

	for _, tr := range trades {
		line := fmt.Sprintf("%s %s at $%.2f on %s",
			tr.Side, tr.Pair.Name, tr.Price, tr.Time.Format("2006-01-02"))
		if tr.Side == market.SideBuy {
			line += fmt.Sprintf(" (SL: $%.2f)", tr.StopLoss)
		}
		t.ops.AppendLog(line)
	}
}
