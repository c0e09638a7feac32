package orderbook

import (
	"container/list"

	"github.com/nathanyu/limitbook/internal/domain"
)

// PriceLevel is a FIFO queue of resting orders sharing one price. Orders is
// an intrusive-style doubly-linked list: an *list.Element handle to a node
// stays valid across insertions and removals of its neighbors, which is what
// lets the order index resolve a cancel or a same-price modify in O(1)
// without shifting anything else in the queue.
type PriceLevel struct {
	Price         domain.Price
	TotalQuantity domain.Quantity
	Orders        *list.List // of *domain.Order
}

func newPriceLevel(price domain.Price) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		Orders: list.New(),
	}
}

// pushBack appends an order to the tail of the level, preserving arrival
// order, and returns the stable handle for it.
func (l *PriceLevel) pushBack(order *domain.Order) *list.Element {
	l.TotalQuantity += order.Quantity
	return l.Orders.PushBack(order)
}

// empty reports whether the level has no resting orders left.
func (l *PriceLevel) empty() bool {
	return l.Orders.Len() == 0
}
