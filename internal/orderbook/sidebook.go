package orderbook

import (
	"container/list"

	"github.com/nathanyu/limitbook/internal/domain"
)

// Book is one side of the order book: an ordered mapping from price to
// price level, sorted so the aggressive end is always first. BUY books sort
// descending (highest bid first); SELL books sort ascending (lowest ask
// first).
type Book struct {
	Side domain.Side
	tree *RBTree
}

// NewBook creates an empty book for side.
func NewBook(side domain.Side) *Book {
	return &Book{
		Side: side,
		tree: NewRBTree(side == domain.SideBuy),
	}
}

// BestPrice returns the aggressive-end price and true, or 0 and false if the
// book is empty.
func (b *Book) BestPrice() (domain.Price, bool) {
	level := b.tree.Min()
	if level == nil {
		return 0, false
	}
	return level.Price, true
}

// HasOrders reports whether the book has any resting liquidity.
func (b *Book) HasOrders() bool {
	return !b.tree.IsEmpty()
}

// LevelCount returns the number of distinct price levels on this side.
func (b *Book) LevelCount() int {
	return b.tree.Size()
}

// Level returns the price level at price, or nil.
func (b *Book) Level(price domain.Price) *PriceLevel {
	return b.tree.Get(price)
}

// BestLevel returns the aggressive-end price level, or nil if empty.
func (b *Book) BestLevel() *PriceLevel {
	return b.tree.Min()
}

// ForEach walks levels aggressive-end first, stopping early if fn returns
// false. Used by the FOK liquidity precheck's walk of achievable fills and
// by depth queries; the matching loop peeks one level at a time through
// BestLevel instead.
func (b *Book) ForEach(fn func(*PriceLevel) bool) {
	b.tree.ForEach(fn)
}

// addOrder appends order to the tail of its price level, creating the level
// if necessary, and returns the stable handle for the new node.
func (b *Book) addOrder(order *domain.Order) *list.Element {
	level := b.tree.Get(*order.Price)
	if level == nil {
		level = newPriceLevel(*order.Price)
		b.tree.Insert(level)
	}
	return level.pushBack(order)
}

// removeOrder erases the node at elem from level's FIFO, adjusts the
// level's cached quantity by qty, and erases the level from the tree if it
// became empty. O(1) given the handle.
func (b *Book) removeOrder(level *PriceLevel, elem *list.Element, qty domain.Quantity) {
	level.Orders.Remove(elem)
	level.TotalQuantity -= qty
	if level.empty() {
		b.tree.Delete(level.Price)
	}
}

// decrementLevel reduces level's cached total quantity without removing any
// node (used for partial fills of a resting order that stays in place).
func (b *Book) decrementLevel(level *PriceLevel, qty domain.Quantity) {
	level.TotalQuantity -= qty
}
