// Package ws hosts the per-connection session actors for both socket kinds.
// A session owns its socket exclusively: it decodes inbound frames, forwards
// them to the registry, and writes outbound frames queued by the registry.
// Sessions never touch another session's state.
package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait     = 10 * time.Second
	sendQueueSize = 64
)

// sender is the outbound half of a session: a bounded queue drained by one
// writer goroutine, so the registry loop never blocks on a slow socket.
// A full queue or a failed write marks the session dead and closes the
// socket; the read loop's teardown then reports the removal.
type sender struct {
	conn   *websocket.Conn
	queue  chan []byte
	dead   chan struct{}
	once   sync.Once
	logger zerolog.Logger
}

func newSender(conn *websocket.Conn, logger zerolog.Logger) *sender {
	s := &sender{
		conn:   conn,
		queue:  make(chan []byte, sendQueueSize),
		dead:   make(chan struct{}),
		logger: logger,
	}
	go s.writeLoop()
	return s
}

func (s *sender) writeLoop() {
	for {
		select {
		case <-s.dead:
			return
		case payload := <-s.queue:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.Debug().Err(err).Msg("socket write failed")
				s.markDead()
				return
			}
		}
	}
}

// send queues one frame. Returns false once the session is dead.
func (s *sender) send(payload []byte) bool {
	select {
	case <-s.dead:
		return false
	default:
	}
	select {
	case s.queue <- payload:
		return true
	default:
		// A session that cannot drain its queue is as good as gone.
		s.logger.Warn().Msg("outbound queue full, dropping session")
		s.markDead()
		return false
	}
}

// markDead shuts the session down exactly once: the socket close unblocks
// the read loop, whose teardown reports the removal to the registry.
func (s *sender) markDead() {
	s.once.Do(func() {
		close(s.dead)
		s.conn.Close()
	})
}
