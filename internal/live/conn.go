package live

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a frame to the server.
	writeWait = 5 * time.Second

	// Send pings with this period. Must be less than pongWait.
	pingPeriod = 25 * time.Second

	// Time allowed between frames (or pongs) from the server.
	pongWait = 30 * time.Second

	// newMessage frames may carry an inline image data URL.
	readLimit = 16 << 20
)

// ErrNoUser is returned by Dial when Options.UserID is empty.
var ErrNoUser = errors.New("live: user id required")

type Options struct {
	URL    string
	UserID string
	// Jar supplies session cookies for the handshake. Optional.
	Jar    http.CookieJar
	Logger *zap.Logger
	// Dialer overrides websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

// Conn is one live connection. Events are delivered to the Handler given to
// Dial until the connection ends, either by Close, by ctx cancellation, or
// by a read failure. There is no reconnect.
type Conn struct {
	ws     *websocket.Conn
	h      Handler
	logger *zap.Logger

	writeMu sync.Mutex

	closeOnce sync.Once
	closed    chan struct{}
	done      chan struct{}

	mu  sync.Mutex
	err error
}

// Dial opens the live channel for opts.UserID. The returned Conn must be
// closed by the caller; cancelling ctx closes it too.
func Dial(ctx context.Context, opts Options, h Handler) (*Conn, error) {
	if opts.UserID == "" {
		return nil, ErrNoUser
	}
	if h == nil {
		return nil, errors.New("live: handler required")
	}
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse live url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("live url %q: scheme must be ws or wss", opts.URL)
	}
	q := u.Query()
	q.Set("userId", opts.UserID)
	u.RawQuery = q.Encode()

	dialer := opts.Dialer
	if dialer == nil {
		d := *websocket.DefaultDialer
		dialer = &d
	}
	if opts.Jar != nil {
		d := *dialer
		d.Jar = opts.Jar
		dialer = &d
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ws, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial live channel: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial live channel: %w", err)
	}

	c := &Conn{
		ws:     ws,
		h:      h,
		logger: logger.With(zap.String("user_id", opts.UserID)),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	c.logger.Info("live channel connected", zap.String("url", u.Redacted()))

	go c.readLoop()
	go c.pingLoop()
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-c.done:
		}
	}()
	return c, nil
}

// Done is closed once the read loop has exited and the socket is released.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Err reports why the connection ended. Nil while running and after a
// local Close.
func (c *Conn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close ends the connection and waits for the read loop to exit. Safe to
// call more than once and from any goroutine except the Handler.
func (c *Conn) Close() error {
	c.shutdown()
	<-c.done
	return nil
}

func (c *Conn) shutdown() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.writeMu.Lock()
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		_ = c.ws.Close()
	})
}

func (c *Conn) readLoop() {
	defer close(c.done)
	defer c.shutdown()

	c.ws.SetReadLimit(readLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, frame, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
				c.logger.Info("live channel closed")
			default:
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.logger.Info("live channel closed by server", zap.Error(err))
				} else {
					c.logger.Warn("live channel read failed", zap.Error(err))
				}
				c.setErr(err)
			}
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		if msgType != websocket.TextMessage {
			c.logger.Debug("ignoring non-text frame", zap.Int("type", msgType))
			continue
		}
		evt, err := Decode(frame)
		if err != nil {
			if errors.Is(err, ErrUnknownEvent) {
				c.logger.Debug("ignoring live event", zap.Error(err))
			} else {
				c.logger.Warn("malformed live frame", zap.Error(err))
			}
			continue
		}
		dispatch(c.h, evt)
	}
}

func (c *Conn) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.closed:
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.ws.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				c.logger.Warn("live ping failed", zap.Error(err))
				c.setErr(err)
				c.shutdown()
				return
			}
		}
	}
}

func (c *Conn) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
}
