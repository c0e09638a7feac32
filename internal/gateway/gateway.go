// Package gateway is the boundary between caller-facing requests and the
// sequencer's internal domain.OrderID space. It assigns a dense OrderID to
// every order it submits, hands the caller back an opaque client token, and
// translates between the two for cancel and modify calls. It holds no
// wallet, risk-check, or settlement logic: that responsibility belongs to a
// venue's clearing system, not the matching path.
package gateway

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/nathanyu/limitbook/internal/domain"
)

// PlaceOrderRequest is the caller-facing shape of a new order, expressed in
// the units a human types: dollars and a plain quantity. The gateway
// converts Price to domain.Price (fixed-point cents) before handing the
// order to the sequencer.
type PlaceOrderRequest struct {
	TraderID    string
	Side        domain.Side
	OrderType   domain.OrderType
	TimeInForce domain.TimeInForce
	STPMode     domain.STPMode
	Price       float64 // dollars; ignored for MARKET orders
	Quantity    int64
}

// Gateway assigns dense order identities and tracks the mapping from
// caller-supplied client tokens back to them.
type Gateway struct {
	mu          sync.RWMutex
	nextID      atomic.Uint64
	clientIndex map[string]domain.OrderID

	OrderOut chan *domain.OrderEvent
}

// NewGateway creates a gateway whose outbound channel to the sequencer has
// the given buffer size.
func NewGateway(bufferSize int) *Gateway {
	return &Gateway{
		clientIndex: make(map[string]domain.OrderID),
		OrderOut:    make(chan *domain.OrderEvent, bufferSize),
	}
}

// toPrice converts a dollar amount to domain.Price's fixed-point cents.
func toPrice(dollars float64) domain.Price {
	return domain.Price(dollars*domain.PriceScale + 0.5)
}

// PlaceOrder converts req into a domain.Order, submits it to the sequencer,
// and blocks for the result. It returns the client order ID minted for this
// order whether or not the order was accepted; the token stays registered
// for CancelOrder and ModifyOrder either way.
func (g *Gateway) PlaceOrder(req PlaceOrderRequest) (string, domain.OrderResult, error) {
	id := domain.OrderID(g.nextID.Add(1))
	clientOrderID := uuid.New().String()

	var order *domain.Order
	switch req.OrderType {
	case domain.OrderTypeMarket:
		order = domain.NewMarketOrder(id, req.TraderID, domain.Quantity(req.Quantity), req.Side, req.STPMode, req.TimeInForce)
	default:
		order = domain.NewLimitOrder(id, req.TraderID, toPrice(req.Price), domain.Quantity(req.Quantity), req.Side, req.STPMode, req.TimeInForce)
	}

	g.mu.Lock()
	g.clientIndex[clientOrderID] = id
	g.mu.Unlock()

	response := make(chan domain.OrderEventResult, 1)
	g.OrderOut <- &domain.OrderEvent{Action: domain.OrderActionNew, Order: order, Response: response}
	result := <-response

	return clientOrderID, result.OrderResult, nil
}

// CancelOrder resolves a client order ID back to its internal OrderID and
// submits a cancel request to the sequencer.
func (g *Gateway) CancelOrder(clientOrderID string) (bool, error) {
	id, err := g.resolve(clientOrderID)
	if err != nil {
		return false, err
	}

	response := make(chan domain.OrderEventResult, 1)
	g.OrderOut <- &domain.OrderEvent{Action: domain.OrderActionCancel, OrderID: id, Response: response}
	result := <-response
	return result.Cancelled, nil
}

// ModifyOrder resolves a client order ID and submits a modify request.
func (g *Gateway) ModifyOrder(clientOrderID string, newPrice float64, newQuantity int64) (domain.ModifyResult, error) {
	id, err := g.resolve(clientOrderID)
	if err != nil {
		return domain.ModifyResult{}, err
	}

	response := make(chan domain.OrderEventResult, 1)
	g.OrderOut <- &domain.OrderEvent{
		Action:      domain.OrderActionModify,
		OrderID:     id,
		NewPrice:    toPrice(newPrice),
		NewQuantity: domain.Quantity(newQuantity),
		Response:    response,
	}
	result := <-response
	return result.ModifyResult, nil
}

func (g *Gateway) resolve(clientOrderID string) (domain.OrderID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	id, ok := g.clientIndex[clientOrderID]
	if !ok {
		return 0, fmt.Errorf("unknown client order id %s", clientOrderID)
	}
	return id, nil
}
