package gateway

import (
	"testing"
	"time"

	"github.com/nathanyu/limitbook/internal/domain"
	"github.com/nathanyu/limitbook/internal/matching"
	"github.com/nathanyu/limitbook/internal/sequencer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wireGateway connects a gateway to a live sequencer so these tests exercise
// the real request/response round trip instead of a mock.
func wireGateway(t *testing.T) *Gateway {
	t.Helper()
	seq := sequencer.NewSequencer(matching.NewEngine(), 16)
	seq.Start()
	t.Cleanup(seq.Stop)

	g := NewGateway(16)
	go func() {
		for event := range g.OrderOut {
			seq.OrderIn <- event
		}
	}()
	return g
}

func TestGateway_PlaceOrder_AssignsClientOrderID(t *testing.T) {
	g := wireGateway(t)

	clientID, result, err := g.PlaceOrder(PlaceOrderRequest{
		TraderID: "trader1", Side: domain.SideBuy, OrderType: domain.OrderTypeLimit,
		TimeInForce: domain.TimeInForceGTC, STPMode: domain.STPAllow, Price: 100.00, Quantity: 10,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, clientID)
	assert.True(t, result.Accepted)
}

func TestGateway_PlaceOrder_ConvertsDollarsToPrice(t *testing.T) {
	g := wireGateway(t)

	_, sellResult, err := g.PlaceOrder(PlaceOrderRequest{
		TraderID: "seller", Side: domain.SideSell, OrderType: domain.OrderTypeLimit,
		TimeInForce: domain.TimeInForceGTC, STPMode: domain.STPAllow, Price: 100.00, Quantity: 5,
	})
	require.NoError(t, err)
	assert.True(t, sellResult.Accepted)

	_, buyResult, err := g.PlaceOrder(PlaceOrderRequest{
		TraderID: "buyer", Side: domain.SideBuy, OrderType: domain.OrderTypeLimit,
		TimeInForce: domain.TimeInForceGTC, STPMode: domain.STPAllow, Price: 100.00, Quantity: 5,
	})
	require.NoError(t, err)
	require.Len(t, buyResult.Trades, 1)
	assert.Equal(t, domain.Price(10000), buyResult.Trades[0].Price)
}

func TestGateway_CancelOrder_RoundTrip(t *testing.T) {
	g := wireGateway(t)

	clientID, result, err := g.PlaceOrder(PlaceOrderRequest{
		TraderID: "trader1", Side: domain.SideBuy, OrderType: domain.OrderTypeLimit,
		TimeInForce: domain.TimeInForceGTC, STPMode: domain.STPAllow, Price: 50.00, Quantity: 3,
	})
	require.NoError(t, err)
	require.True(t, result.Accepted)

	cancelled, err := g.CancelOrder(clientID)
	require.NoError(t, err)
	assert.True(t, cancelled)
}

func TestGateway_CancelOrder_UnknownClientID(t *testing.T) {
	g := wireGateway(t)

	_, err := g.CancelOrder("does-not-exist")
	assert.Error(t, err)
}

func TestGateway_ModifyOrder_RoundTrip(t *testing.T) {
	g := wireGateway(t)

	clientID, result, err := g.PlaceOrder(PlaceOrderRequest{
		TraderID: "trader1", Side: domain.SideBuy, OrderType: domain.OrderTypeLimit,
		TimeInForce: domain.TimeInForceGTC, STPMode: domain.STPAllow, Price: 50.00, Quantity: 10,
	})
	require.NoError(t, err)
	require.True(t, result.Accepted)

	modifyResult, err := g.ModifyOrder(clientID, 50.00, 6)
	require.NoError(t, err)
	assert.True(t, modifyResult.Accepted)
	assert.Equal(t, domain.Quantity(6), modifyResult.NewQuantity)
}

func TestGateway_PlaceOrder_MarketOrderIgnoresPrice(t *testing.T) {
	g := wireGateway(t)

	_, sellResult, err := g.PlaceOrder(PlaceOrderRequest{
		TraderID: "seller", Side: domain.SideSell, OrderType: domain.OrderTypeLimit,
		TimeInForce: domain.TimeInForceGTC, STPMode: domain.STPAllow, Price: 25.00, Quantity: 4,
	})
	require.NoError(t, err)
	require.True(t, sellResult.Accepted)

	_, buyResult, err := g.PlaceOrder(PlaceOrderRequest{
		TraderID: "buyer", Side: domain.SideBuy, OrderType: domain.OrderTypeMarket,
		TimeInForce: domain.TimeInForceIOC, STPMode: domain.STPAllow, Quantity: 4,
	})
	require.NoError(t, err)
	require.True(t, buyResult.Accepted)
	require.Len(t, buyResult.Trades, 1)
	assert.Equal(t, domain.Price(2500), buyResult.Trades[0].Price)
}

func TestGateway_RepeatedSetupTeardown_DoesNotHang(t *testing.T) {
	// Smoke test: constructing and tearing down a gateway-backed sequencer
	// repeatedly should not hang.
	for i := 0; i < 3; i++ {
		g := wireGateway(t)
		_, _, err := g.PlaceOrder(PlaceOrderRequest{
			TraderID: "t", Side: domain.SideBuy, OrderType: domain.OrderTypeLimit,
			TimeInForce: domain.TimeInForceGTC, STPMode: domain.STPAllow, Price: 1, Quantity: 1,
		})
		require.NoError(t, err)
	}
	time.Sleep(time.Millisecond)
}
