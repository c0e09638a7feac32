// Package orderbook implements the two-sided resting-order data structure:
// the price-ordered side books, the FIFO price levels within them, and the
// order index that resolves an order id to its exact queue node in O(1).
// It holds no matching algorithm; that lives in internal/matching and
// mutates this structure through the methods below.
package orderbook

import (
	"container/list"

	"github.com/nathanyu/limitbook/internal/domain"
)

// OrderLocation is the order index's locator: which side, which price, and
// a stable handle into that level's FIFO. The handle remains valid no
// matter what else is inserted or removed at the same or other price
// levels, which is what makes Cancel and the same-price Modify O(1).
type OrderLocation struct {
	Side    domain.Side
	Price   domain.Price
	level   *PriceLevel
	element *list.Element
}

// OrderBook holds one instrument's resting state: both side books, the
// order index, and the last-trade/trade-id state that travels with it.
type OrderBook struct {
	BuyBook  *Book
	SellBook *Book

	index map[domain.OrderID]*OrderLocation

	lastTradePrice domain.Price
	lastTradeQty   domain.Quantity
	tradeSeq       domain.TradeID
}

// New creates an empty order book.
func New() *OrderBook {
	return &OrderBook{
		BuyBook:  NewBook(domain.SideBuy),
		SellBook: NewBook(domain.SideSell),
		index:    make(map[domain.OrderID]*OrderLocation),
	}
}

// BookFor returns the side book for side.
func (ob *OrderBook) BookFor(side domain.Side) *Book {
	if side == domain.SideBuy {
		return ob.BuyBook
	}
	return ob.SellBook
}

// OppositeBook returns the side book on the other side from side.
func (ob *OrderBook) OppositeBook(side domain.Side) *Book {
	return ob.BookFor(side.Opposite())
}

// Contains reports whether id is already resting in the book.
func (ob *OrderBook) Contains(id domain.OrderID) bool {
	_, ok := ob.index[id]
	return ok
}

// Locate returns the index entry for id, if resting.
func (ob *OrderBook) Locate(id domain.OrderID) (*OrderLocation, bool) {
	loc, ok := ob.index[id]
	return loc, ok
}

// RestOrder appends order to the back of its side's price level at
// order.Price and records its index entry. Callers must ensure order is a
// LIMIT order with a live quantity.
func (ob *OrderBook) RestOrder(order *domain.Order) {
	book := ob.BookFor(order.Side)
	elem := book.addOrder(order)
	level := book.Level(*order.Price)
	ob.index[order.ID] = &OrderLocation{
		Side:    order.Side,
		Price:   *order.Price,
		level:   level,
		element: elem,
	}
}

// RemoveResting erases the resting order id from its level and the index in
// O(1) and returns it, or nil if id was not resting.
func (ob *OrderBook) RemoveResting(id domain.OrderID) *domain.Order {
	loc, ok := ob.index[id]
	if !ok {
		return nil
	}
	order := loc.element.Value.(*domain.Order)
	book := ob.BookFor(loc.Side)
	book.removeOrder(loc.level, loc.element, order.Quantity)
	delete(ob.index, id)
	return order
}

// Cancel removes a resting order by id. Reports whether it was found.
func (ob *OrderBook) Cancel(id domain.OrderID) bool {
	return ob.RemoveResting(id) != nil
}

// DecrementResting reduces a still-live resting order's cached level
// quantity by qty, leaving it in place (its time priority is preserved).
// Callers are responsible for mutating the order's own Quantity field.
func (ob *OrderBook) DecrementResting(loc *OrderLocation, qty domain.Quantity) {
	ob.BookFor(loc.Side).decrementLevel(loc.level, qty)
}

// Get returns the live resting order for id, or nil.
func (ob *OrderBook) Get(id domain.OrderID) *domain.Order {
	loc, ok := ob.index[id]
	if !ok {
		return nil
	}
	return loc.element.Value.(*domain.Order)
}

// AdjustLevelQuantity reduces level's cached total quantity by qty. Used by
// the matching engine while a fill is in progress, before the fully-filled
// resting order (if any) is removed via RemoveRestingAfterFill.
func (ob *OrderBook) AdjustLevelQuantity(side domain.Side, level *PriceLevel, qty domain.Quantity) {
	ob.BookFor(side).decrementLevel(level, qty)
}

// RemoveRestingAfterFill removes a resting order whose remaining quantity
// has already reached zero through fills credited via AdjustLevelQuantity.
// It does not further adjust the level's total quantity.
func (ob *OrderBook) RemoveRestingAfterFill(id domain.OrderID) *domain.Order {
	loc, ok := ob.index[id]
	if !ok {
		return nil
	}
	order := loc.element.Value.(*domain.Order)
	ob.BookFor(loc.Side).removeOrder(loc.level, loc.element, 0)
	delete(ob.index, id)
	return order
}

// NextTradeID returns the next strictly increasing trade id.
func (ob *OrderBook) NextTradeID() domain.TradeID {
	ob.tradeSeq++
	return ob.tradeSeq
}

// RecordTrade updates the last-trade-price/qty pair.
func (ob *OrderBook) RecordTrade(price domain.Price, qty domain.Quantity) {
	ob.lastTradePrice = price
	ob.lastTradeQty = qty
}

// BestBid returns the highest resting buy price, or 0 if the buy side is
// empty.
func (ob *OrderBook) BestBid() domain.Price {
	p, ok := ob.BuyBook.BestPrice()
	if !ok {
		return 0
	}
	return p
}

// BestAsk returns the lowest resting sell price, or 0 if the sell side is
// empty.
func (ob *OrderBook) BestAsk() domain.Price {
	p, ok := ob.SellBook.BestPrice()
	if !ok {
		return 0
	}
	return p
}

// Spread is BestAsk - BestBid. Meaningful only when both sides are
// non-empty; callers must gate on side presence themselves.
func (ob *OrderBook) Spread() domain.Price {
	return ob.BestAsk() - ob.BestBid()
}

// MidPrice is (BestBid+BestAsk)/2 by integer division, or 0 if either side
// is empty.
func (ob *OrderBook) MidPrice() domain.Price {
	bid, bidOK := ob.BuyBook.BestPrice()
	ask, askOK := ob.SellBook.BestPrice()
	if !bidOK || !askOK {
		return 0
	}
	return (bid + ask) / 2
}

// LastTradePrice returns the price of the most recent trade.
func (ob *OrderBook) LastTradePrice() domain.Price { return ob.lastTradePrice }

// LastTradeQty returns the quantity of the most recent trade.
func (ob *OrderBook) LastTradeQty() domain.Quantity { return ob.lastTradeQty }

// DepthEntry is one price level as exposed to market-data consumers.
type DepthEntry struct {
	Price    domain.Price
	Quantity domain.Quantity
}

// LevelCount returns the number of distinct price levels resting on side.
func (ob *OrderBook) LevelCount(side domain.Side) int {
	return ob.BookFor(side).LevelCount()
}

// Depth returns up to n price levels from side, aggressive end first.
func (ob *OrderBook) Depth(side domain.Side, n int) []DepthEntry {
	entries := make([]DepthEntry, 0, n)
	ob.BookFor(side).ForEach(func(level *PriceLevel) bool {
		if len(entries) >= n {
			return false
		}
		entries = append(entries, DepthEntry{Price: level.Price, Quantity: level.TotalQuantity})
		return true
	})
	return entries
}

// Snapshot bundles the current top-of-book and last-trade state.
func (ob *OrderBook) Snapshot(now domain.Timestamp) domain.PriceData {
	return domain.PriceData{
		Time:           now,
		BidPrice:       ob.BestBid(),
		AskPrice:       ob.BestAsk(),
		MidPrice:       ob.MidPrice(),
		Spread:         ob.Spread(),
		LastTradePrice: ob.lastTradePrice,
		LastTradeQty:   ob.lastTradeQty,
	}
}
