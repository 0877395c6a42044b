package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Gateway upgrades HTTP requests to WebSocket observers of a Broadcaster.
// Each connection gets one writer goroutine fed by its subscription, so a
// stalled socket only ever backs up its own queue.
type Gateway struct {
	b        *Broadcaster
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewGateway(b *Broadcaster, logger zerolog.Logger) *Gateway {
	return &Gateway{
		b: b,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: logger.With().Str("component", "ws-gateway").Logger(),
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub := g.b.Register()
	defer func() {
		g.b.Unregister(sub)
		conn.Close()
	}()
	g.log.Info().Str("observer", sub.ID()).Str("remote", r.RemoteAddr).Msg("client connected")

	closed := make(chan struct{})
	go g.readLoop(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			g.log.Info().Str("observer", sub.ID()).Msg("client disconnected")
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				g.log.Debug().Err(err).Str("observer", sub.ID()).Msg("write failed, dropping client")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains control frames and reports when the peer goes away.
func (g *Gateway) readLoop(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
