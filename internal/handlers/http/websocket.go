package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gabapcia/txalert/internal/broadcast"
	"github.com/gabapcia/txalert/internal/pkg/logger"

	"github.com/gorilla/websocket"
)

// maxInboundMessageSize bounds client frames; clients are not expected to
// send anything but control frames.
const maxInboundMessageSize = 512

// wsObserver writes broadcast messages to one websocket connection. The
// broadcaster calls Send from a single goroutine per observer, which is the
// only writer of conn.
type wsObserver struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

var _ broadcast.Observer = (*wsObserver)(nil)

func (o *wsObserver) Send(_ context.Context, msg []byte) error {
	if err := o.conn.SetWriteDeadline(time.Now().Add(o.writeTimeout)); err != nil {
		return err
	}

	return o.conn.WriteMessage(websocket.TextMessage, msg)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	ctx := logger.Derive(r.Context(), "remote.addr", r.RemoteAddr)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug(ctx, "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub, err := s.hub.Connect(ctx, &wsObserver{conn: conn, writeTimeout: s.cfg.writeTimeout})
	if err != nil {
		logger.Warn(ctx, "failed to attach observer", "error", err)
		return
	}
	defer sub.Close()

	logger.Debug(ctx, "observer connected")
	defer logger.Debug(ctx, "observer disconnected")

	// unblock the read loop once delivery stopped on its own
	go func() {
		<-sub.Done()
		conn.Close()
	}()

	conn.SetReadLimit(maxInboundMessageSize)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
