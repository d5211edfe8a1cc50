package stream

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/subject/core/logger"
	"github.com/dmitrymomot/subject/pkg/broadcast"
	"github.com/dmitrymomot/subject/pkg/clientip"
)

// WebSocket returns a handler that upgrades the connection, subscribes to src
// and writes every value as a text message. When the subject closes, the client
// receives a normal close frame. When the client goes away the subscription
// is abandoned and pruned on the next send.
func WebSocket[V any](src Source[V], encode Encoder[V], opts ...Option) http.Handler {
	o := newOptions(opts)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := o.logger.With(
			logger.Component("stream"),
			logger.Transport("websocket"),
			logger.ConnectionID(uuid.NewString()),
			logger.ClientIP(clientip.GetIP(r)),
		)

		conn, err := o.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already replied with an HTTP error.
			log.DebugContext(r.Context(), "websocket upgrade failed", logger.Error(err))
			return
		}
		defer func() {
			_ = conn.Close()
		}()

		rx, err := src.Subscribe()
		if err != nil {
			writeClose(conn, websocket.CloseGoingAway, "subject closed", o.writeWait)
			return
		}
		defer rx.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// The client never sends data; reading only surfaces close frames and errors.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		if o.keepAlive > 0 {
			go ping(ctx, conn, o.keepAlive, o.writeWait)
		}

		log.DebugContext(ctx, "websocket subscriber connected")
		defer log.DebugContext(r.Context(), "websocket subscriber disconnected")

		for {
			v, err := rx.Recv(ctx)
			if err != nil {
				if errors.Is(err, broadcast.ErrClosed) {
					writeClose(conn, websocket.CloseNormalClosure, "end of stream", o.writeWait)
				}
				return
			}

			data, err := encode(v)
			if err != nil {
				log.ErrorContext(ctx, "failed to encode value", logger.Error(err))
				continue
			}

			_ = conn.SetWriteDeadline(time.Now().Add(o.writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.DebugContext(ctx, "websocket write failed", logger.Error(err))
				return
			}
		}
	})
}

// ping uses WriteControl, which is safe to call concurrently with WriteMessage.
func ping(ctx context.Context, conn *websocket.Conn, interval, wait time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wait)); err != nil {
				return
			}
		}
	}
}

func writeClose(conn *websocket.Conn, code int, reason string, wait time.Duration) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wait))
}
