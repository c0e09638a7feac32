// Package sequencer provides the single-writer wrapper spec.md's
// concurrency model requires: the matching engine itself exposes no locks
// and is safe only under serialized access, so exactly one goroutine -
// this one - ever calls its mutating methods.
package sequencer

import (
	"log"
	"sync/atomic"

	"github.com/nathanyu/limitbook/internal/domain"
	"github.com/nathanyu/limitbook/internal/matching"
	"github.com/nathanyu/limitbook/internal/middleware"
)

// Sequencer stamps monotonically increasing outbound sequence numbers on
// emitted trades and is the sole caller of the engine's mutating methods.
type Sequencer struct {
	outboundSeq atomic.Uint64
	engine      *matching.Engine

	OrderIn      chan *domain.OrderEvent
	ExecutionOut chan *domain.ExecutionEvent

	done chan struct{}
}

// NewSequencer wires a sequencer to engine with the given channel buffer
// size.
func NewSequencer(engine *matching.Engine, bufferSize int) *Sequencer {
	return &Sequencer{
		engine:       engine,
		OrderIn:      make(chan *domain.OrderEvent, bufferSize),
		ExecutionOut: make(chan *domain.ExecutionEvent, bufferSize),
		done:         make(chan struct{}),
	}
}

// Start begins the sequencer's single-writer application loop.
func (s *Sequencer) Start() {
	go s.run()
}

// Stop signals the loop to shut down.
func (s *Sequencer) Stop() {
	close(s.done)
}

func (s *Sequencer) run() {
	log.Println("[sequencer] started")
	for {
		select {
		case event := <-s.OrderIn:
			s.processEvent(event)
		case <-s.done:
			log.Println("[sequencer] stopped")
			return
		}
	}
}

// processEvent is the only place that calls into the engine: price-time
// priority is exactly the order in which events are drained here.
func (s *Sequencer) processEvent(event *domain.OrderEvent) {
	var result domain.OrderEventResult
	var trades []domain.Trade

	switch event.Action {
	case domain.OrderActionNew:
		result.OrderResult = s.engine.AddOrderToBook(event.Order)
		trades = result.OrderResult.Trades
		s.recordOrderMetrics(result.OrderResult)
	case domain.OrderActionCancel:
		result.Cancelled = s.engine.CancelOrder(event.OrderID)
	case domain.OrderActionModify:
		result.ModifyResult = s.engine.ModifyOrder(event.OrderID, event.NewPrice, event.NewQuantity)
	}

	if event.Response != nil {
		event.Response <- result
	}

	middleware.OrderBookDepth.WithLabelValues("buy").Set(float64(s.engine.LevelCount(domain.SideBuy)))
	middleware.OrderBookDepth.WithLabelValues("sell").Set(float64(s.engine.LevelCount(domain.SideSell)))

	if len(trades) == 0 {
		return
	}

	seq := s.outboundSeq.Add(1)
	middleware.SequencerOutboundSeq.Set(float64(seq))
	execEvent := &domain.ExecutionEvent{
		SequenceID: seq,
		Trades:     trades,
		Snapshot:   s.engine.Snapshot(),
	}

	select {
	case s.ExecutionOut <- execEvent:
	default:
		log.Println("[sequencer] WARN: execution output channel full, dropping event")
	}
}

func (s *Sequencer) recordOrderMetrics(result domain.OrderResult) {
	if !result.Accepted {
		middleware.OrdersTotal.WithLabelValues("new", "rejected").Inc()
		middleware.RejectsTotal.WithLabelValues(result.RejectReason).Inc()
		return
	}

	middleware.OrdersTotal.WithLabelValues("new", "accepted").Inc()
	for range result.Trades {
		middleware.TradesTotal.Inc()
	}
	if result.STPResult.SelfTrade {
		middleware.SelfTradePreventionsTotal.WithLabelValues(result.STPResult.Action).Inc()
	}
}

// CurrentOutboundSeq returns the current outbound sequence number.
func (s *Sequencer) CurrentOutboundSeq() uint64 {
	return s.outboundSeq.Load()
}
