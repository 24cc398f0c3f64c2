package sink

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/specialistvlad/tidrun/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultSocketIOEvent is the event name used when none is configured.
const DefaultSocketIOEvent = "tidrun:line"

// SocketIOConfig describes the remote transcript receiver.
type SocketIOConfig struct {
	URL                string
	Namespace          string
	Event              string
	RunID              string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
	RetryInterval      time.Duration
	// MaxRetries is the number of attempts after the first; 0 tries once.
	MaxRetries uint64
}

func (c *SocketIOConfig) applyDefaults() {
	if c.Namespace == "" {
		c.Namespace = "/"
	}
	if c.Event == "" {
		c.Event = DefaultSocketIOEvent
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 250 * time.Millisecond
	}
}

// conn is the part of a socket.io client the sink needs.
type conn interface {
	emit(event string, payload any)
	close()
}

type dialFunc func(ctx context.Context, cfg SocketIOConfig) (conn, error)

// SocketIO streams transcript lines as socket.io events. If the server
// cannot be reached the sink degrades to dropping lines; the run itself is
// never failed by it.
type SocketIO struct {
	mu     sync.Mutex
	cfg    SocketIOConfig
	conn   conn
	seq    int
	logger *slog.Logger
}

// NewSocketIO connects to cfg.URL, retrying with exponential backoff.
func NewSocketIO(ctx context.Context, cfg SocketIOConfig) *SocketIO {
	return newSocketIO(ctx, cfg, dialSocketIO)
}

func newSocketIO(ctx context.Context, cfg SocketIOConfig, dial dialFunc) *SocketIO {
	cfg.applyDefaults()
	logger := ctxlog.FromContext(ctx).With("sink", "socketio", "url", cfg.URL, "namespace", cfg.Namespace)
	s := &SocketIO{cfg: cfg, logger: logger}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.RetryInterval
	b.MaxInterval = 10 * cfg.RetryInterval
	policy := backoff.WithMaxRetries(b, cfg.MaxRetries)

	attempt := 0
	operation := func() error {
		attempt++
		c, err := dial(ctx, cfg)
		if err != nil {
			logger.Debug("Socket.IO connect attempt failed.", "attempt", attempt, "error", err)
			return err
		}
		s.conn = c
		return nil
	}
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		logger.Warn("Socket.IO sink disabled, transcript lines will be dropped.", "attempts", attempt, "error", err)
		return s
	}
	logger.Debug("Socket.IO sink connected.", "attempts", attempt)
	return s
}

// Connected reports whether the sink holds a live connection.
func (s *SocketIO) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Line implements Sink.
func (s *SocketIO) Line(kind Kind, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return
	}
	s.conn.emit(s.cfg.Event, map[string]any{
		"run":  s.cfg.RunID,
		"seq":  s.seq,
		"kind": kind.String(),
		"text": text,
	})
	s.seq++
}

// Close disconnects from the server.
func (s *SocketIO) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.close()
		s.conn = nil
	}
	return nil
}

type socketConn struct {
	io *socket.Socket
}

func (c *socketConn) emit(event string, payload any) {
	c.io.Emit(event, payload)
}

func (c *socketConn) close() {
	c.io.Disconnect()
}

// dialSocketIO performs one connection attempt and waits for the connect
// or connect_error event.
func dialSocketIO(ctx context.Context, cfg SocketIOConfig) (conn, error) {
	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to parse URL: %w", err))
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, backoff.Permanent(fmt.Errorf("URL %q must include scheme and host", cfg.URL))
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	result := make(chan error, 1)
	io.On(types.EventName("connect"), func(...any) {
		select {
		case result <- nil:
		default:
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case result <- err:
		default:
		}
	})
	io.Connect()

	timer := time.NewTimer(cfg.ConnectTimeout)
	defer timer.Stop()

	select {
	case err := <-result:
		if err != nil {
			io.Disconnect()
			return nil, err
		}
		return &socketConn{io: io}, nil
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for connection", cfg.ConnectTimeout)
	case <-ctx.Done():
		io.Disconnect()
		return nil, backoff.Permanent(ctx.Err())
	}
}
