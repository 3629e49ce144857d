package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Transport dials the sync endpoint and returns a live connection. The
// manager owns exactly one Conn at a time; tests substitute a fake.
type Transport interface {
	Dial(ctx context.Context, wsURL string, cb ConnCallbacks) (Conn, error)
}

// ConnCallbacks receive events from a connection. OnFrame runs on the
// connection's read goroutine; OnClose fires at most once, when the
// connection dies for any reason.
type ConnCallbacks struct {
	OnFrame func(data []byte)
	OnClose func(code int, err error)
}

// Conn is a single live connection. Enqueue never blocks: it returns
// false when the write buffer is full or the connection is closed.
type Conn interface {
	Enqueue(data []byte) bool
	Close(code int, reason string)
}

// buildURL appends the access token and platform tag to the endpoint URL.
func buildURL(base, token, platform string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	if token != "" {
		q.Set("token", token)
	}
	if platform != "" {
		q.Set("platform", platform)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// wsTransport is the production Transport backed by gorilla/websocket.
type wsTransport struct {
	cfg    Config
	logger *slog.Logger
}

func newWSTransport(cfg Config, logger *slog.Logger) *wsTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &wsTransport{cfg: cfg, logger: logger}
}

// Dial establishes the WebSocket connection and starts its read and
// write pumps.
func (t *wsTransport) Dial(ctx context.Context, wsURL string, cb ConnCallbacks) (Conn, error) {
	header := http.Header{}
	header.Set("Accept", "application/json")

	dialer := websocket.Dialer{
		HandshakeTimeout: t.cfg.ConnectTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, err
	}

	msgType := websocket.TextMessage
	if t.cfg.Compression {
		msgType = websocket.BinaryMessage
	}

	c := &wsConn{
		conn:         conn,
		logger:       t.logger,
		cb:           cb,
		msgType:      msgType,
		writeTimeout: t.cfg.WriteTimeout,
		writeCh:      make(chan []byte, t.cfg.WriteQueueSize),
		done:         make(chan struct{}),
	}

	go c.readPump()
	go c.writePump()

	t.logger.Debug("websocket connected", "url", wsURL)
	return c, nil
}

// wsConn wraps a gorilla connection with a buffered write pump so the
// manager's event loop never blocks on the network.
type wsConn struct {
	conn         *websocket.Conn
	logger       *slog.Logger
	cb           ConnCallbacks
	msgType      int
	writeTimeout time.Duration

	writeCh chan []byte
	done    chan struct{}

	closeOnce sync.Once // guards socket close + done
	cbOnce    sync.Once // guards OnClose delivery
}

// Enqueue hands a message to the write pump. Returns false if the
// buffer is full or the connection is closed.
func (c *wsConn) Enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.writeCh <- data:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Close sends a close frame with the given code and tears the
// connection down. Safe to call more than once.
func (c *wsConn) Close(code int, reason string) {
	c.teardown(true, code, reason)
}

func (c *wsConn) teardown(sendClose bool, code int, reason string) {
	c.closeOnce.Do(func() {
		if sendClose {
			c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(code, reason),
				time.Now().Add(time.Second),
			)
		}
		c.conn.Close()
		close(c.done)
	})
}

// readPump reads messages until the connection dies, then reports the
// close once.
func (c *wsConn) readPump() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.deliverClose(err)
			c.teardown(false, 0, "")
			return
		}
		if c.cb.OnFrame != nil {
			c.cb.OnFrame(data)
		}
	}
}

// writePump serializes writes. A failed write kills the connection.
func (c *wsConn) writePump() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.writeCh:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(c.msgType, data); err != nil {
				c.logger.Debug("websocket write failed", "error", err)
				c.deliverClose(err)
				c.teardown(false, 0, "")
				return
			}
		}
	}
}

// deliverClose extracts the close code (1006 when the peer vanished
// without one) and fires OnClose exactly once.
func (c *wsConn) deliverClose(err error) {
	code := websocket.CloseAbnormalClosure
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		code = ce.Code
	}
	c.cbOnce.Do(func() {
		if c.cb.OnClose != nil {
			c.cb.OnClose(code, err)
		}
	})
}
