package marketdata

import (
	"testing"
	"time"

	"github.com/nathanyu/limitbook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trade(price domain.Price, qty domain.Quantity) domain.Trade {
	return domain.Trade{BuyOrderID: 1, SellOrderID: 2, Price: price, Quantity: qty, Time: 1}
}

func TestPublisher_UpdateCandle_FirstTradeOpensIt(t *testing.T) {
	p := NewPublisher(4)
	p.updateCandle(trade(10000, 5))

	require.True(t, p.currentHasData)
	assert.Equal(t, domain.Price(10000), p.current.Open)
	assert.Equal(t, domain.Price(10000), p.current.High)
	assert.Equal(t, domain.Price(10000), p.current.Low)
	assert.Equal(t, domain.Quantity(5), p.current.Volume)
}

func TestPublisher_UpdateCandle_TracksHighLowCloseVolume(t *testing.T) {
	p := NewPublisher(4)
	p.updateCandle(trade(10000, 5))
	p.updateCandle(trade(10200, 3))
	p.updateCandle(trade(9900, 2))

	assert.Equal(t, domain.Price(10000), p.current.Open)
	assert.Equal(t, domain.Price(10200), p.current.High)
	assert.Equal(t, domain.Price(9900), p.current.Low)
	assert.Equal(t, domain.Price(9900), p.current.Close)
	assert.Equal(t, domain.Quantity(10), p.current.Volume)
}

func TestPublisher_RotateCandle_MovesIntoRingAndResets(t *testing.T) {
	p := NewPublisher(4)
	p.updateCandle(trade(10000, 5))
	p.rotateCandle()

	assert.False(t, p.currentHasData)
	recent := p.candles.recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, domain.Price(10000), recent[0].Close)
}

func TestPublisher_RotateCandle_NoopWhenEmpty(t *testing.T) {
	p := NewPublisher(4)
	p.rotateCandle()
	assert.Empty(t, p.candles.recent(1))
}

func TestPublisher_GetCandles_IncludesInFlightCandle(t *testing.T) {
	p := NewPublisher(4)
	p.updateCandle(trade(10000, 5))
	p.rotateCandle()
	p.updateCandle(trade(10500, 1))

	candles := p.GetCandles(10)
	require.Len(t, candles, 2)
	assert.Equal(t, domain.Price(10500), candles[1].Close)
}

func TestPublisher_ProcessExecutionEvent_PushesSnapshotAndBroadcasts(t *testing.T) {
	p := NewPublisher(4)
	sub := p.Subscribe(4)
	defer p.Unsubscribe(sub)

	event := &domain.ExecutionEvent{
		SequenceID: 1,
		Trades:     []domain.Trade{trade(10000, 5)},
		Snapshot:   domain.PriceData{Time: 1, BidPrice: 9900, AskPrice: 10100},
	}
	p.processExecutionEvent(event)

	snapshots := p.GetSnapshots(10)
	require.Len(t, snapshots, 1)
	assert.Equal(t, domain.Price(9900), snapshots[0].BidPrice)

	var gotTrade, gotSnapshot bool
	for i := 0; i < 2; i++ {
		select {
		case msg := <-sub.ch:
			if msg.Type == "trade" {
				gotTrade = true
			}
			if msg.Type == "snapshot" {
				gotSnapshot = true
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for broadcast")
		}
	}
	assert.True(t, gotTrade)
	assert.True(t, gotSnapshot)
}

func TestPublisher_StartStop(t *testing.T) {
	p := NewPublisher(4)
	p.Start()
	p.ExecutionIn <- &domain.ExecutionEvent{
		Trades:   []domain.Trade{trade(10000, 1)},
		Snapshot: domain.PriceData{Time: 1},
	}
	time.Sleep(10 * time.Millisecond)
	p.Stop()

	snapshots := p.GetSnapshots(10)
	require.Len(t, snapshots, 1)
}

func TestCandleRing_WrapsAroundAtCapacity(t *testing.T) {
	var r candleRing
	for i := 0; i < candleRingCapacity+10; i++ {
		r.push(&Candlestick{Close: domain.Price(i)})
	}
	assert.Equal(t, candleRingCapacity, r.count)
	recent := r.recent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, domain.Price(candleRingCapacity+9), recent[0].Close)
}
