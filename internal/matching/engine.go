// Package matching implements the order-validation pipeline and the
// price-time-priority matching algorithm: crossing an incoming order
// against the opposite side of the book, producing trades, applying
// self-trade prevention, and resting any residual quantity.
package matching

import (
	"github.com/nathanyu/limitbook/internal/domain"
	"github.com/nathanyu/limitbook/internal/orderbook"
)

// Engine is a single-instrument matching engine. It is single-threaded and
// non-reentrant: all mutating calls (AddOrderToBook, CancelOrder,
// ModifyOrder) must be serialized by the caller. See internal/sequencer for
// the single-writer wrapper that provides that serialization.
type Engine struct {
	book  *orderbook.OrderBook
	clock uint64
}

// NewEngine creates an empty matching engine.
func NewEngine() *Engine {
	return &Engine{book: orderbook.New()}
}

func (e *Engine) tick() domain.Timestamp {
	e.clock++
	return domain.Timestamp(e.clock)
}

func minQty(a, b domain.Quantity) domain.Quantity {
	if a < b {
		return a
	}
	return b
}

// AddOrderToBook validates, matches, and (for a residual GTC limit) rests
// order. order.Quantity is mutated in place to the remaining quantity.
func (e *Engine) AddOrderToBook(order *domain.Order) domain.OrderResult {
	order.Timestamp = e.tick()

	if ok, reason := validate(e.book, order); !ok {
		return domain.OrderResult{
			Accepted:          false,
			RejectReason:      reason,
			RemainingQuantity: order.Quantity,
		}
	}

	if order.OrderType == domain.OrderTypeMarket {
		return e.handleMarket(order)
	}
	return e.handleLimit(order)
}

func (e *Engine) handleMarket(order *domain.Order) domain.OrderResult {
	opposite := e.book.OppositeBook(order.Side)
	if !opposite.HasOrders() {
		reason := domain.RejectNoLiquidityAsk
		if order.Side == domain.SideSell {
			reason = domain.RejectNoLiquidityBid
		}
		return domain.OrderResult{
			Accepted:          false,
			RejectReason:      reason,
			RemainingQuantity: order.Quantity,
		}
	}

	trades, stp := e.matchOrder(order)
	// MARKET is always IOC/FOK; any residual is discarded, never rested.
	return domain.OrderResult{
		Accepted:          true,
		Trades:            trades,
		RemainingQuantity: order.Quantity,
		STPResult:         stp,
	}
}

func (e *Engine) handleLimit(order *domain.Order) domain.OrderResult {
	trades, stp := e.matchOrder(order)

	if order.Quantity > 0 && order.TimeInForce == domain.TimeInForceGTC {
		e.book.RestOrder(order)
	}
	// IOC/FOK residuals are dropped without resting.

	return domain.OrderResult{
		Accepted:          true,
		Trades:            trades,
		RemainingQuantity: order.Quantity,
		STPResult:         stp,
	}
}

// matchOrder crosses incoming against the opposite side book until it is
// exhausted, the opposite side is empty, or the aggressive-end level is no
// longer price-acceptable.
func (e *Engine) matchOrder(incoming *domain.Order) ([]domain.Trade, domain.STPResult) {
	opposite := e.book.OppositeBook(incoming.Side)

	var trades []domain.Trade
	var stp domain.STPResult

	for incoming.Quantity > 0 && opposite.HasOrders() {
		level := opposite.BestLevel()
		if level == nil || !priceAcceptable(incoming, level.Price) {
			break
		}
		if progressed := e.matchLevel(incoming, opposite.Side, level, &trades, &stp); !progressed {
			// Every resting order left at this level was skipped by
			// DECREMENT_AND_CANCEL self-trade prevention: the level is
			// unfillable for this incoming order and re-peeking it would
			// select the same level forever.
			break
		}
	}

	return trades, stp
}

// matchLevel walks level's FIFO queue from the front, filling incoming
// against each resting order in turn and applying self-trade prevention
// when incoming and the resting order share a trader. Node removal during
// the walk never invalidates the already-captured next pointer, which is
// what lets CANCEL_OLDEST and full fills remove the current node and keep
// walking; DECREMENT_AND_CANCEL simply steps past it. Returns whether
// the pass made any forward progress (a fill or an STP cancellation); a
// false return means the level's remaining orders were all skipped self-
// trades and the caller must not re-select this level for incoming.
func (e *Engine) matchLevel(incoming *domain.Order, oppositeSide domain.Side, level *orderbook.PriceLevel, trades *[]domain.Trade, stp *domain.STPResult) bool {
	elem := level.Orders.Front()
	progressed := false

	for elem != nil && incoming.Quantity > 0 {
		resting := elem.Value.(*domain.Order)
		next := elem.Next()

		selfTrade := incoming.TraderID != "" &&
			incoming.TraderID == resting.TraderID &&
			incoming.STPMode != domain.STPAllow

		if selfTrade {
			switch incoming.STPMode {
			case domain.STPDecrementAndCancel:
				elem = next
				continue
			case domain.STPCancelNewest:
				incoming.Quantity = 0
				stp.SelfTrade = true
				stp.CancelledOrders = append(stp.CancelledOrders, incoming.ID)
				stp.Action = "self-trade prevention: cancelled incoming order (newest)"
				return true
			case domain.STPCancelOldest:
				e.book.RemoveResting(resting.ID)
				stp.SelfTrade = true
				stp.CancelledOrders = append(stp.CancelledOrders, resting.ID)
				stp.Action = "self-trade prevention: cancelled resting order (oldest)"
				elem = next
				progressed = true
				continue
			case domain.STPCancelBoth:
				e.book.RemoveResting(resting.ID)
				incoming.Quantity = 0
				stp.SelfTrade = true
				stp.CancelledOrders = append(stp.CancelledOrders, resting.ID, incoming.ID)
				stp.Action = "self-trade prevention: cancelled both orders"
				return true
			}
		}

		fillQty := minQty(incoming.Quantity, resting.Quantity)

		trade := domain.Trade{
			ID:       e.book.NextTradeID(),
			Price:    level.Price,
			Quantity: fillQty,
			Time:     incoming.Timestamp,
		}
		if incoming.Side == domain.SideBuy {
			trade.BuyOrderID, trade.SellOrderID = incoming.ID, resting.ID
		} else {
			trade.BuyOrderID, trade.SellOrderID = resting.ID, incoming.ID
		}
		*trades = append(*trades, trade)

		incoming.Quantity -= fillQty
		resting.Quantity -= fillQty
		e.book.AdjustLevelQuantity(oppositeSide, level, fillQty)
		e.book.RecordTrade(level.Price, fillQty)
		progressed = true

		if resting.Quantity == 0 {
			e.book.RemoveRestingAfterFill(resting.ID)
		}

		elem = next
	}

	return progressed
}

// CancelOrder removes a resting order by id. Reports whether it was found.
func (e *Engine) CancelOrder(id domain.OrderID) bool {
	return e.book.Cancel(id)
}

// ModifyOrder changes a resting order's price and/or quantity. A same-price
// quantity decrease updates the node in place, preserving time priority;
// any other accepted change cancels the order and inserts a fresh one at
// the back of the destination level.
func (e *Engine) ModifyOrder(id domain.OrderID, newPrice domain.Price, newQuantity domain.Quantity) domain.ModifyResult {
	order := e.book.Get(id)
	if order == nil {
		return domain.ModifyResult{Accepted: false, RejectReason: domain.RejectOrderNotFound}
	}
	if newQuantity <= 0 {
		return domain.ModifyResult{Accepted: false, RejectReason: domain.RejectInvalidQuantity}
	}
	if newPrice <= 0 {
		return domain.ModifyResult{Accepted: false, RejectReason: domain.RejectInvalidPrice}
	}

	if order.Side == domain.SideBuy {
		if ask, ok := e.book.SellBook.BestPrice(); ok && newPrice >= ask {
			return domain.ModifyResult{Accepted: false, RejectReason: domain.RejectModifyCrossSpread}
		}
	} else {
		if bid, ok := e.book.BuyBook.BestPrice(); ok && newPrice <= bid {
			return domain.ModifyResult{Accepted: false, RejectReason: domain.RejectModifyCrossSpread}
		}
	}

	oldPrice := *order.Price
	oldQuantity := order.Quantity

	if newPrice == oldPrice && newQuantity <= oldQuantity {
		loc, _ := e.book.Locate(id)
		delta := oldQuantity - newQuantity
		order.Quantity = newQuantity
		e.book.DecrementResting(loc, delta)
	} else {
		e.book.RemoveResting(id)
		fresh := domain.NewLimitOrder(id, order.TraderID, newPrice, newQuantity, order.Side, order.STPMode, order.TimeInForce)
		fresh.Timestamp = e.tick()
		e.book.RestOrder(fresh)
	}

	return domain.ModifyResult{
		Accepted:    true,
		OldPrice:    oldPrice,
		NewPrice:    newPrice,
		OldQuantity: oldQuantity,
		NewQuantity: newQuantity,
	}
}

// BestBid returns the highest resting buy price, or 0 if empty.
func (e *Engine) BestBid() domain.Price { return e.book.BestBid() }

// BestAsk returns the lowest resting sell price, or 0 if empty.
func (e *Engine) BestAsk() domain.Price { return e.book.BestAsk() }

// Spread is BestAsk - BestBid.
func (e *Engine) Spread() domain.Price { return e.book.Spread() }

// MidPrice is (BestBid+BestAsk)/2 by integer division, or 0 if either side
// is empty.
func (e *Engine) MidPrice() domain.Price { return e.book.MidPrice() }

// LastTradePrice returns the price of the most recent trade.
func (e *Engine) LastTradePrice() domain.Price { return e.book.LastTradePrice() }

// LastTradeQty returns the quantity of the most recent trade.
func (e *Engine) LastTradeQty() domain.Quantity { return e.book.LastTradeQty() }

// Snapshot bundles the current top-of-book and last-trade state.
func (e *Engine) Snapshot() domain.PriceData {
	return e.book.Snapshot(domain.Timestamp(e.clock))
}

// Depth returns up to n resting price levels from side, aggressive end
// first.
func (e *Engine) Depth(side domain.Side, n int) []orderbook.DepthEntry {
	return e.book.Depth(side, n)
}

// LevelCount returns the number of distinct resting price levels on side.
func (e *Engine) LevelCount(side domain.Side) int {
	return e.book.LevelCount(side)
}
