package domain

import "fmt"

// PriceScale is the number of minor units (cents) per major unit. All price
// arithmetic is integer; PriceScale is the only place the scale is named.
const PriceScale = 100

// Price is an integer number of minor units (cents).
type Price int64

// Quantity is a signed count of shares/contracts. Live resting quantity is
// always strictly positive; signedness only exists so subtraction never
// needs an underflow guard.
type Quantity int64

// OrderID identifies an order for the lifetime of the engine that admitted it.
type OrderID uint64

// TradeID identifies an emitted trade. Strictly increasing across the
// engine's lifetime.
type TradeID uint64

// Timestamp is a tick from the engine's own monotonic counter, used only for
// ordering and audit. It carries no wall-clock meaning and is never compared
// across engine instances.
type Timestamp uint64

// FormatPrice renders p as "[-]D.CC" with two-digit, zero-padded cents. It is
// a display concern only; wire and persisted values carry the raw integer.
func FormatPrice(p Price) string {
	neg := p < 0
	if neg {
		p = -p
	}
	whole := int64(p) / PriceScale
	frac := int64(p) % PriceScale
	if neg {
		return fmt.Sprintf("-%d.%02d", whole, frac)
	}
	return fmt.Sprintf("%d.%02d", whole, frac)
}

// Side is the side of the book an order rests on or trades against.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderType distinguishes resting limit orders from immediately-worked
// market orders.
type OrderType string

const (
	OrderTypeLimit  OrderType = "LIMIT"
	OrderTypeMarket OrderType = "MARKET"
)

// TimeInForce governs how long an order may remain unfilled.
type TimeInForce string

const (
	TimeInForceGTC TimeInForce = "GTC"
	TimeInForceIOC TimeInForce = "IOC"
	TimeInForceFOK TimeInForce = "FOK"
)

// STPMode selects the self-trade prevention behavior applied by the inner
// matching loop when an incoming order would trade against a resting order
// from the same trader.
type STPMode string

const (
	STPAllow              STPMode = "ALLOW"
	STPCancelNewest       STPMode = "CANCEL_NEWEST"
	STPCancelOldest       STPMode = "CANCEL_OLDEST"
	STPCancelBoth         STPMode = "CANCEL_BOTH"
	STPDecrementAndCancel STPMode = "DECREMENT_AND_CANCEL"
)

// Order is a submission descriptor. Price is nil iff OrderType is MARKET.
// Quantity holds the live remaining quantity; the matching engine mutates it
// in place as fills are produced.
type Order struct {
	ID          OrderID
	TraderID    string
	Price       *Price
	Quantity    Quantity
	Side        Side
	OrderType   OrderType
	TimeInForce TimeInForce
	STPMode     STPMode
	Timestamp   Timestamp
}

// NewLimitOrder constructs a LIMIT order. tif is typically GTC; IOC and FOK
// are also legal for a limit order (a marketable-limit that should not rest).
func NewLimitOrder(id OrderID, traderID string, price Price, qty Quantity, side Side, stp STPMode, tif TimeInForce) *Order {
	p := price
	return &Order{
		ID:          id,
		TraderID:    traderID,
		Price:       &p,
		Quantity:    qty,
		Side:        side,
		OrderType:   OrderTypeLimit,
		TimeInForce: tif,
		STPMode:     stp,
	}
}

// NewMarketOrder constructs a MARKET order. tif must be IOC or FOK; MARKET
// orders can never be GTC.
func NewMarketOrder(id OrderID, traderID string, qty Quantity, side Side, stp STPMode, tif TimeInForce) *Order {
	return &Order{
		ID:          id,
		TraderID:    traderID,
		Price:       nil,
		Quantity:    qty,
		Side:        side,
		OrderType:   OrderTypeMarket,
		TimeInForce: tif,
		STPMode:     stp,
	}
}

// Trade is an immutable execution record.
type Trade struct {
	ID         TradeID
	BuyOrderID OrderID
	SellOrderID OrderID
	Price      Price
	Quantity   Quantity
	Time       Timestamp
}

// PriceData is a top-of-book snapshot. Missing sides report 0.
type PriceData struct {
	Time           Timestamp
	BidPrice       Price
	AskPrice       Price
	MidPrice       Price
	Spread         Price
	LastTradePrice Price
	LastTradeQty   Quantity
}

// STPResult reports the self-trade prevention outcome of a single admission.
type STPResult struct {
	SelfTrade       bool
	CancelledOrders []OrderID
	Action          string
}

// OrderResult is returned by every admission call.
type OrderResult struct {
	Accepted          bool
	RejectReason      string
	Trades            []Trade
	RemainingQuantity Quantity
	STPResult         STPResult
}

// ModifyResult is returned by ModifyOrder.
type ModifyResult struct {
	Accepted     bool
	RejectReason string
	OldPrice     Price
	NewPrice     Price
	OldQuantity  Quantity
	NewQuantity  Quantity
}

// Rejection reasons, verbatim strings a caller can match on.
const (
	RejectDuplicateID       = "Duplicate order ID"
	RejectInvalidQuantity   = "Invalid quantity: must be positive"
	RejectLimitNeedsPrice   = "Limit order requires price"
	RejectInvalidPrice      = "Price must be positive"
	RejectMarketGTC         = "Invalid: MARKET orders cannot be GTC"
	RejectFOKLiquidity      = "FOK: insufficient liquidity for full fill"
	RejectNoLiquidityAsk    = "No liquidity: ask side empty"
	RejectNoLiquidityBid    = "No liquidity: bid side empty"
	RejectOrderNotFound     = "Order not found"
	RejectModifyCrossSpread = "modify would cross spread"
)
