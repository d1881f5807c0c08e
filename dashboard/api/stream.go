package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/absmach/flaudit/dashboard"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var (
	_ dashboard.Display = (*Stream)(nil)
	_ http.Handler      = (*Stream)(nil)

	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
)

// Stream pushes frames to websocket clients. A new client receives the most
// recent frame straight away. Slow clients only ever see the latest frame.
type Stream struct {
	mu      sync.RWMutex
	clients map[chan dashboard.Frame]struct{}
	last    *dashboard.Frame
	logger  *slog.Logger
}

func NewStream(logger *slog.Logger) *Stream {
	return &Stream{
		clients: make(map[chan dashboard.Frame]struct{}),
		logger:  logger,
	}
}

func (s *Stream) Display(_ context.Context, frame dashboard.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = &frame
	for client := range s.clients {
		select {
		case client <- frame:
		default:
			select {
			case <-client:
			default:
			}
			client <- frame
		}
	}

	return nil
}

func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", slog.Any("error", err))

		return
	}
	defer conn.Close()

	client := make(chan dashboard.Frame, 1)
	s.register(client)
	defer s.unregister(client)

	// Drain reads so close frames from the peer are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case frame := <-client:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				s.logger.Debug("Websocket client dropped", slog.Any("error", err))

				return
			}
		}
	}
}

// Clients returns the number of connected clients.
func (s *Stream) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.clients)
}

func (s *Stream) register(client chan dashboard.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[client] = struct{}{}
	if s.last != nil {
		client <- *s.last
	}
}

func (s *Stream) unregister(client chan dashboard.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.clients, client)
}
