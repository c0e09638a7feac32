package orderbook

import (
	"testing"

	"github.com/nathanyu/limitbook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restingOrder(id domain.OrderID, side domain.Side, price domain.Price, qty domain.Quantity) *domain.Order {
	return domain.NewLimitOrder(id, "trader1", price, qty, side, domain.STPAllow, domain.TimeInForceGTC)
}

func TestRestOrder(t *testing.T) {
	ob := New()

	sell := restingOrder(1, domain.SideSell, 10050, 1000)
	ob.RestOrder(sell)

	assert.True(t, ob.SellBook.HasOrders())
	assert.Equal(t, domain.Price(10050), ob.BestAsk())
	assert.True(t, ob.Contains(1))
}

func TestRestOrder_SamePriceAggregates(t *testing.T) {
	ob := New()

	ob.RestOrder(restingOrder(1, domain.SideSell, 10050, 500))
	ob.RestOrder(restingOrder(2, domain.SideSell, 10050, 300))

	level := ob.SellBook.Level(10050)
	require.NotNil(t, level)
	assert.Equal(t, domain.Quantity(800), level.TotalQuantity)
	assert.Equal(t, 2, level.Orders.Len())
}

func TestBestPriceTracking(t *testing.T) {
	ob := New()

	ob.RestOrder(restingOrder(1, domain.SideBuy, 9990, 100))
	ob.RestOrder(restingOrder(2, domain.SideBuy, 10000, 100))
	ob.RestOrder(restingOrder(3, domain.SideBuy, 9980, 100))
	assert.Equal(t, domain.Price(10000), ob.BestBid())

	ob.RestOrder(restingOrder(4, domain.SideSell, 10010, 100))
	ob.RestOrder(restingOrder(5, domain.SideSell, 10020, 100))
	assert.Equal(t, domain.Price(10010), ob.BestAsk())
}

func TestCancel(t *testing.T) {
	ob := New()
	ob.RestOrder(restingOrder(1, domain.SideSell, 10050, 1000))

	assert.True(t, ob.Cancel(1))
	assert.False(t, ob.SellBook.HasOrders())
	assert.False(t, ob.Contains(1))
}

func TestCancel_NotFound(t *testing.T) {
	ob := New()
	assert.False(t, ob.Cancel(999))
}

func TestCancel_MiddleOfLevel(t *testing.T) {
	ob := New()
	ob.RestOrder(restingOrder(1, domain.SideSell, 10050, 100))
	ob.RestOrder(restingOrder(2, domain.SideSell, 10050, 200))
	ob.RestOrder(restingOrder(3, domain.SideSell, 10050, 300))

	assert.True(t, ob.Cancel(2))

	level := ob.SellBook.Level(10050)
	require.NotNil(t, level)
	assert.Equal(t, domain.Quantity(400), level.TotalQuantity)
	assert.Equal(t, 2, level.Orders.Len())
}

func TestRemoveResting_EmptiesLevel(t *testing.T) {
	ob := New()
	ob.RestOrder(restingOrder(1, domain.SideBuy, 9900, 50))

	removed := ob.RemoveResting(1)
	require.NotNil(t, removed)
	assert.Nil(t, ob.BuyBook.Level(9900))
	assert.False(t, ob.BuyBook.HasOrders())
}

func TestSnapshot_EmptyBook(t *testing.T) {
	ob := New()
	snap := ob.Snapshot(1)
	assert.Equal(t, domain.Price(0), snap.BidPrice)
	assert.Equal(t, domain.Price(0), snap.AskPrice)
	assert.Equal(t, domain.Price(0), snap.MidPrice)
}

func TestSnapshot_BothSides(t *testing.T) {
	ob := New()
	ob.RestOrder(restingOrder(1, domain.SideBuy, 9900, 100))
	ob.RestOrder(restingOrder(2, domain.SideSell, 10100, 100))

	snap := ob.Snapshot(1)
	assert.Equal(t, domain.Price(9900), snap.BidPrice)
	assert.Equal(t, domain.Price(10100), snap.AskPrice)
	assert.Equal(t, domain.Price(10000), snap.MidPrice)
	assert.Equal(t, domain.Price(200), snap.Spread)
}

func TestForEach_WalksAggressiveFirst(t *testing.T) {
	ob := New()
	ob.RestOrder(restingOrder(1, domain.SideSell, 10100, 100))
	ob.RestOrder(restingOrder(2, domain.SideSell, 10050, 100))
	ob.RestOrder(restingOrder(3, domain.SideSell, 10200, 100))

	var prices []domain.Price
	ob.SellBook.ForEach(func(l *PriceLevel) bool {
		prices = append(prices, l.Price)
		return true
	})
	assert.Equal(t, []domain.Price{10050, 10100, 10200}, prices)

	ob2 := New()
	ob2.RestOrder(restingOrder(4, domain.SideBuy, 9900, 100))
	ob2.RestOrder(restingOrder(5, domain.SideBuy, 10000, 100))
	ob2.RestOrder(restingOrder(6, domain.SideBuy, 9800, 100))

	var bidPrices []domain.Price
	ob2.BuyBook.ForEach(func(l *PriceLevel) bool {
		bidPrices = append(bidPrices, l.Price)
		return true
	})
	assert.Equal(t, []domain.Price{10000, 9900, 9800}, bidPrices)
}

func TestNextTradeID_Increasing(t *testing.T) {
	ob := New()
	assert.Equal(t, domain.TradeID(1), ob.NextTradeID())
	assert.Equal(t, domain.TradeID(2), ob.NextTradeID())
	assert.Equal(t, domain.TradeID(3), ob.NextTradeID())
}

func TestDepth_ReturnsAggressiveEndFirst(t *testing.T) {
	ob := New()
	ob.RestOrder(restingOrder(1, domain.SideBuy, 9900, 100))
	ob.RestOrder(restingOrder(2, domain.SideBuy, 10000, 50))
	ob.RestOrder(restingOrder(3, domain.SideBuy, 9800, 200))

	depth := ob.Depth(domain.SideBuy, 2)
	require.Len(t, depth, 2)
	assert.Equal(t, domain.Price(10000), depth[0].Price)
	assert.Equal(t, domain.Quantity(50), depth[0].Quantity)
	assert.Equal(t, domain.Price(9900), depth[1].Price)
}

func TestDepth_FewerLevelsThanRequested(t *testing.T) {
	ob := New()
	ob.RestOrder(restingOrder(1, domain.SideSell, 10100, 100))

	depth := ob.Depth(domain.SideSell, 10)
	require.Len(t, depth, 1)
}

func TestLevelCount(t *testing.T) {
	ob := New()
	assert.Equal(t, 0, ob.LevelCount(domain.SideBuy))

	ob.RestOrder(restingOrder(1, domain.SideBuy, 9900, 100))
	ob.RestOrder(restingOrder(2, domain.SideBuy, 9900, 50))
	ob.RestOrder(restingOrder(3, domain.SideBuy, 9800, 50))
	assert.Equal(t, 2, ob.LevelCount(domain.SideBuy))
}
