package broadcast

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/metrics"
)

const (
	writeDeadline     = 5 * time.Second
	pingInterval      = 30 * time.Second
	pongDeadline      = 90 * time.Second
	messageBufferSize = 32
)

// subscriberWriter owns all writes to one subscriber connection. Events are
// enqueued on a bounded channel; the hub never blocks on a slow socket.
type subscriberWriter struct {
	connection  *websocket.Conn
	clock       clockwork.Clock
	sendChannel chan []byte
	doneChannel chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func newSubscriberWriter(connection *websocket.Conn, clock clockwork.Clock) *subscriberWriter {
	sw := &subscriberWriter{
		connection:  connection,
		clock:       clock,
		sendChannel: make(chan []byte, messageBufferSize),
		doneChannel: make(chan struct{}),
	}
	sw.configurePongHandler()
	sw.wg.Add(1)
	go sw.run()
	return sw
}

func (sw *subscriberWriter) run() {
	ticker := sw.clock.NewTicker(pingInterval)
	defer ticker.Stop()
	defer sw.wg.Done()

	for {
		select {
		case msg, ok := <-sw.sendChannel:
			if !ok {
				return
			}
			start := sw.clock.Now()
			sw.updateWriteDeadline()
			if err := sw.connection.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
			metrics.WebSocketSendDuration.Observe(sw.clock.Since(start).Seconds())
		case <-ticker.Chan():
			sw.updateWriteDeadline()
			if err := sw.connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				metrics.WebSocketPingFailures.Inc()
				return
			}
		case <-sw.doneChannel:
			return
		}
	}
}

// enqueue attempts a non-blocking send. Returns false when the buffer is
// full, which marks the subscriber as slow.
func (sw *subscriberWriter) enqueue(msg []byte) bool {
	select {
	case sw.sendChannel <- msg:
		return true
	default:
		return false
	}
}

func (sw *subscriberWriter) stop() {
	sw.stopOnce.Do(func() {
		close(sw.doneChannel)
		_ = sw.connection.Close()
	})
	sw.wg.Wait()
}

// stopGraceful sends a WebSocket close frame with reason before closing.
func (sw *subscriberWriter) stopGraceful(reason string) {
	sw.stopOnce.Do(func() {
		// Signal the run goroutine to exit and wait for it, so the close
		// frame is never written concurrently with a pending message.
		close(sw.doneChannel)
		sw.wg.Wait()

		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
		sw.updateWriteDeadline()
		_ = sw.connection.WriteMessage(websocket.CloseMessage, closeMsg)
		_ = sw.connection.Close()
	})
}

func (sw *subscriberWriter) configurePongHandler() {
	sw.updateReadDeadline()
	sw.connection.SetPongHandler(func(string) error {
		sw.updateReadDeadline()
		return nil
	})
}

func (sw *subscriberWriter) updateWriteDeadline() {
	_ = sw.connection.SetWriteDeadline(sw.clock.Now().Add(writeDeadline))
}

func (sw *subscriberWriter) updateReadDeadline() {
	_ = sw.connection.SetReadDeadline(sw.clock.Now().Add(pongDeadline))
}
