// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/relabs-tech/compass/internal/heading"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

type snapshotter interface {
	Snapshot() heading.Snapshot
}

// wsHub fans snapshots out to connected websocket clients.
type wsHub struct {
	mu        sync.Mutex
	clients   map[*latestQueue]struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newWSHub() *wsHub {
	return &wsHub{
		clients: make(map[*latestQueue]struct{}),
		done:    make(chan struct{}),
	}
}

// close tells every connected client handler to hang up.
func (h *wsHub) close() {
	h.closeOnce.Do(func() { close(h.done) })
}

func (h *wsHub) broadcast(s heading.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for q := range h.clients {
		q.push(s)
	}
}

func (h *wsHub) add() *latestQueue {
	q := newLatestQueue()
	h.mu.Lock()
	h.clients[q] = struct{}{}
	h.mu.Unlock()
	return q
}

func (h *wsHub) remove(q *latestQueue) {
	h.mu.Lock()
	delete(h.clients, q)
	h.mu.Unlock()
}

func (h *wsHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func newWebHandler(src snapshotter, hub *wsHub, logger *zap.SugaredLogger) http.Handler {
	mux := http.NewServeMux()

	// JSON API endpoint: latest snapshot. A compass without sensors answers
	// 503 with the snapshot explaining why.
	mux.HandleFunc("/api/heading", func(w http.ResponseWriter, r *http.Request) {
		snap := src.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		if !snap.Available {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			logger.Warnw("json encode error", "error", err)
		}
	})

	// Live stream: the current snapshot on connect, then every update.
	mux.HandleFunc("/ws/heading", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warnw("websocket upgrade error", "error", err)
			return
		}
		defer conn.Close()

		q := hub.add()
		defer hub.remove(q)
		q.push(src.Snapshot())
		logger.Debugw("websocket client connected", "remote", r.RemoteAddr)

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				logger.Debugw("websocket client disconnected", "remote", r.RemoteAddr)
				return
			case <-hub.done:
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "compass shutting down")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteTimeout))
				return
			case s := <-q.C():
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteJSON(s); err != nil {
					logger.Debugw("websocket write error", "error", err)
					return
				}
			}
		}
	})

	return mux
}

// runWeb serves handler on port until ctx is done. Shutdown also hangs up
// the websocket clients of hub, which the server no longer tracks.
func runWeb(ctx context.Context, port int, handler http.Handler, hub *wsHub, logger *zap.SugaredLogger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv.RegisterOnShutdown(hub.close)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Infow("web server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}
