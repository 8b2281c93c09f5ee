package application

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// ChannelAll receives every broadcast.
	ChannelAll = "all"

	writeWait  = 10 * time.Second
	sendBuffer = 16
)

type HuberOptions struct {
	Logger      *logrus.Logger
	CheckOrigin func(r *http.Request) bool
}

// Huber upgrades connections and fans messages out to channels. A client
// picks its channel with the ?channel= query parameter.
type Huber interface {
	http.Handler
	Broadcast(channel string, message []byte)
	ConnectionsInChannel(channel string) int
}

type connection struct {
	ws      *websocket.Conn
	channel string
	send    chan []byte
}

type huber struct {
	upgrader websocket.Upgrader
	logger   *logrus.Logger

	mu    sync.RWMutex
	conns map[*connection]struct{}
}

func NewHub(opts *HuberOptions) Huber {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &huber{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		logger: logger,
		conns:  make(map[*connection]struct{}),
	}
}

func (h *huber) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}
	channel := r.URL.Query().Get("channel")
	if channel == "" {
		channel = ChannelAll
	}
	conn := &connection{ws: ws, channel: channel, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(conn)
	h.readLoop(conn)
}

// readLoop drains client frames until the connection closes.
func (h *huber) readLoop(conn *connection) {
	defer h.drop(conn)
	for {
		if _, _, err := conn.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *huber) writeLoop(conn *connection) {
	for msg := range conn.send {
		_ = conn.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.WithError(err).Debug("websocket write failed")
			_ = conn.ws.Close()
			return
		}
	}
	_ = conn.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	_ = conn.ws.Close()
}

func (h *huber) drop(conn *connection) {
	h.mu.Lock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		close(conn.send)
	}
	h.mu.Unlock()
}

// Broadcast queues message for every connection on channel and on
// ChannelAll. Slow clients whose buffer is full miss the message.
func (h *huber) Broadcast(channel string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.conns {
		if conn.channel != channel && conn.channel != ChannelAll {
			continue
		}
		select {
		case conn.send <- message:
		default:
			h.logger.WithField("channel", conn.channel).Warn("websocket client too slow, message dropped")
		}
	}
}

func (h *huber) ConnectionsInChannel(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for conn := range h.conns {
		if conn.channel == channel {
			n++
		}
	}
	return n
}
