package domain

// OrderAction selects which engine operation an OrderEvent carries through
// the sequencer's single-writer pipeline.
type OrderAction string

const (
	OrderActionNew    OrderAction = "NEW"
	OrderActionCancel OrderAction = "CANCEL"
	OrderActionModify OrderAction = "MODIFY"
)

// OrderEvent is one unit of work for the sequencer. Exactly one of Order
// (NEW), OrderID (CANCEL), or OrderID+NewPrice+NewQuantity (MODIFY) is
// meaningful, selected by Action. Response receives the outcome and is
// always closed-over by a buffered channel of size 1 so the sequencer never
// blocks delivering it.
type OrderEvent struct {
	Action      OrderAction
	Order       *Order
	OrderID     OrderID
	NewPrice    Price
	NewQuantity Quantity
	Response    chan OrderEventResult
}

// OrderEventResult carries back whichever field matches the originating
// event's Action.
type OrderEventResult struct {
	OrderResult  OrderResult
	Cancelled    bool
	ModifyResult ModifyResult
}

// ExecutionEvent fans a sequencer-processed NEW order's trades out to
// downstream market-data consumers, stamped with the outbound sequence
// number assigned at emission.
type ExecutionEvent struct {
	SequenceID uint64
	Trades     []Trade
	Snapshot   PriceData
}
