package matching

import (
	"github.com/nathanyu/limitbook/internal/domain"
	"github.com/nathanyu/limitbook/internal/orderbook"
)

// validate runs the admission checks in order. It performs no state
// mutation; a rejection leaves the book untouched.
func validate(book *orderbook.OrderBook, order *domain.Order) (bool, string) {
	if book.Contains(order.ID) {
		return false, domain.RejectDuplicateID
	}
	if order.Quantity <= 0 {
		return false, domain.RejectInvalidQuantity
	}
	if order.OrderType == domain.OrderTypeLimit && order.Price == nil {
		return false, domain.RejectLimitNeedsPrice
	}
	if order.Price != nil && *order.Price <= 0 {
		return false, domain.RejectInvalidPrice
	}
	if order.OrderType == domain.OrderTypeMarket && order.TimeInForce == domain.TimeInForceGTC {
		return false, domain.RejectMarketGTC
	}
	if order.TimeInForce == domain.TimeInForceFOK {
		if fokAvailableLiquidity(book, order) < order.Quantity {
			return false, domain.RejectFOKLiquidity
		}
	}
	return true, ""
}

// priceAcceptable reports whether a resting order at restingPrice may trade
// against incoming: a BUY may cross an ask at or below its own price (or
// any price if MARKET); a SELL may cross a bid at or above its own price
// (or any price if MARKET).
func priceAcceptable(incoming *domain.Order, restingPrice domain.Price) bool {
	if incoming.OrderType == domain.OrderTypeMarket {
		return true
	}
	if incoming.Side == domain.SideBuy {
		return restingPrice <= *incoming.Price
	}
	return restingPrice >= *incoming.Price
}

// fokAvailableLiquidity sums resting quantity on the opposite side that is
// price-acceptable to order, walking from the aggressive end and stopping
// at the first unacceptable level. This is the same price-acceptability
// rule matchOrder uses, evaluated against book state at admission time.
func fokAvailableLiquidity(book *orderbook.OrderBook, order *domain.Order) domain.Quantity {
	opposite := book.OppositeBook(order.Side)
	var total domain.Quantity
	opposite.ForEach(func(level *orderbook.PriceLevel) bool {
		if !priceAcceptable(order, level.Price) {
			return false
		}
		total += level.TotalQuantity
		return true
	})
	return total
}
