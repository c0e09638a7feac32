package marketdata

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

const streamSubscriberBuffer = 32

// StreamHandler upgrades a GET /v1/stream request to a websocket and relays
// every trade and snapshot broadcast by the publisher until a write to the
// client fails. Messages broadcast while this subscriber's buffer is full
// are dropped for it; the connection stays open.
func (p *Publisher) StreamHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[marketdata] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sub := p.Subscribe(streamSubscriberBuffer)
	defer p.Unsubscribe(sub)

	for msg := range sub.ch {
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
