package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/microcity/internal/engine"
)

const (
	writeWait   = 5 * time.Second
	readWait    = 60 * time.Second
	pingPeriod  = 25 * time.Second
	maxReadSize = 512
)

// streamMessage is one frame on the live stream.
type streamMessage struct {
	Type   string         `json:"type"` // "hello" or "update"
	Update *engine.Update `json:"update,omitempty"`
	Events []engine.Event `json:"events,omitempty"`
}

// handleStream upgrades to a websocket and pushes an update after every
// state change. Clients only read; anything they send is ignored.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	select {
	case s.streams <- struct{}{}:
		defer func() { <-s.streams }()
	default:
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxReadSize)

	subID, updates := s.Sim.Subscribe()
	defer s.Sim.Unsubscribe(subID)
	slog.Info("stream client connected", "sub_id", subID)

	hello := engine.Update{Kind: "hello", Day: s.Sim.Day(), Stats: s.Sim.Stats()}
	if money, ok := s.Sim.Money(); ok {
		hello.Money = &money
	}
	if err := writeFrame(conn, streamMessage{Type: "hello", Update: &hello, Events: s.Sim.Events(20)}); err != nil {
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writer goroutine.
	writeErr := make(chan error, 1)
	go func() {
		ping := time.NewTicker(pingPeriod)
		defer ping.Stop()
		for {
			select {
			case <-ctx.Done():
				writeErr <- ctx.Err()
				return
			case u, ok := <-updates:
				if !ok {
					writeErr <- nil
					return
				}
				if err := writeFrame(conn, streamMessage{Type: "update", Update: &u}); err != nil {
					writeErr <- err
					return
				}
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					writeErr <- err
					return
				}
			}
		}
	}()

	// Reader loop: keeps the read deadline alive and notices close frames.
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	select {
	case <-writeErr:
	case <-time.After(500 * time.Millisecond):
	}
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
	slog.Info("stream client disconnected", "sub_id", subID)
}

func writeFrame(conn *websocket.Conn, msg streamMessage) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, b)
}
