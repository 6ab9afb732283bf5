package trader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yodabytz/Kryptobot/internal/market"
	"github.com/yodabytz/Kryptobot/internal/state"
)

type Status int

const (
	StatusSubmitted Status = iota
	StatusFilled
	StatusUnfilled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFilled:
		return "filled"
	case StatusUnfilled:
		return "unfilled"
	case StatusFailed:
		return "failed"
	default:
		return "submitted"
	}
}

// Order is one submission attempt. Status moves Submitted -> Filled, Unfilled
// or Failed exactly once; the executor never revisits a terminal order.
type Order struct {
	Pair   market.Pair
	Side   market.Side
	Volume decimal.Decimal
	ID     string
	Status Status
}

type orderPlacer interface {
	SubmitOrder(ctx context.Context, pair string, side market.Side, volume decimal.Decimal) (string, error)
	OrderStatus(ctx context.Context, orderID string) (string, error)
}

type notifier interface {
	Notify(subject, body string)
}

// statusClosed is the platform-neutral fill marker every adapter maps to.
const statusClosed = "closed"

// Executor places market orders and resolves their outcome with a single
// status check after a short settle delay. An order still open after that one
// check is reported Unfilled and left to the exchange; later cycles see its
// effect through balances, not through order tracking.
type Executor struct {
	log      *slog.Logger
	exchange orderPlacer
	notify   notifier
	ops      *state.OperationalState
	settle   time.Duration
}

func NewExecutor(log *slog.Logger, exchange orderPlacer, notify notifier, ops *state.OperationalState, settle time.Duration) *Executor {
	return &Executor{
		log:      log,
		exchange: exchange,
		notify:   notify,
		ops:      ops,
		settle:   settle,
	}
}

func (e *Executor) Execute(ctx context.Context, pair market.Pair, side market.Side, volume decimal.Decimal) Order {
	ord := Order{Pair: pair, Side: side, Volume: volume, Status: StatusSubmitted}

	id, err := e.exchange.SubmitOrder(ctx, pair.Symbol, side, volume)
	if err == nil && id == "" {
		err = errors.New("exchange returned no order id")
	}
	if err != nil {
		ord.Status = StatusFailed
		e.log.Error("failed to place order",
			slog.String("pair", pair.Symbol),
			slog.String("side", string(side)),
			slog.Any("error", err))
		e.ops.AppendLog(fmt.Sprintf("Error placing %s order for %s: %v", side, pair.Symbol, err))
		e.notify.Notify(
			fmt.Sprintf("Kryptobot: Failed to Place %s Order", side),
			fmt.Sprintf("Failed to place %s order for %s %s.\nError: %v", side, volume, pair.Symbol, err))
		return ord
	}

	ord.ID = id
	e.ops.AppendLog(fmt.Sprintf("Placed %s order for %s %s (Order ID: %s)", side, volume, pair.Symbol, id))
	e.notify.Notify(
		fmt.Sprintf("Kryptobot: %s Order Placed", side),
		fmt.Sprintf("Placed %s order for %s %s.\nOrder ID: %s", side, volume, pair.Symbol, id))

	// Give the exchange a moment to match before the one and only check.
	e.ops.Sleep(e.settle)

	status, err := e.exchange.OrderStatus(ctx, id)
	if err != nil {
		ord.Status = StatusUnfilled
		e.log.Warn("failed to query order status",
			slog.String("order_id", id),
			slog.Any("error", err))
		e.ops.AppendLog(fmt.Sprintf("Could not confirm %s order %s: %v", side, id, err))
		return ord
	}

	if status == statusClosed {
		ord.Status = StatusFilled
		e.ops.AppendLog(fmt.Sprintf("%s order filled for %s %s (Order ID: %s)", side, volume, pair.Symbol, id))
	} else {
		ord.Status = StatusUnfilled
		e.ops.AppendLog(fmt.Sprintf("%s order %s not filled yet (status: %s)", side, id, status))
	}
	return ord
}
