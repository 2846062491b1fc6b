package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	ws "github.com/gorilla/websocket"

	"github.com/viperball/matchsim/pkg/streaming"
)

const (
	outboxSize   = 10_000
	ackBacklog   = 16
	redialTries  = 10
	firstBackoff = time.Second
	maxBackoff   = 30 * time.Second
	writeWait    = 10 * time.Second
	ackTimeout   = 10 * time.Second
)

// ErrClosed is returned when waiting on a stream that has been shut down.
var ErrClosed = errors.New("stream closed")

// stream owns one server connection. A single pump goroutine writes; a
// reader goroutine routes acks. Either one hands a broken connection to
// redial, which restarts both.
type stream struct {
	mu     sync.Mutex
	conn   *ws.Conn
	target string
	replay []byte // start_batch of the open batch
	closed bool

	outbox  chan []byte
	acks    chan string
	done    chan struct{}
	dropped atomic.Uint64

	logger *slog.Logger
}

func newStream(logger *slog.Logger) *stream {
	return &stream{
		outbox: make(chan []byte, outboxSize),
		acks:   make(chan string, ackBacklog),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// serverURL adds the shared secret to the query of rawURL.
func serverURL(rawURL, secret string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid websocket URL: %w", err)
	}
	q := u.Query()
	q.Set("secret", secret)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// backoff returns the wait before the given redial attempt, doubling from
// firstBackoff up to maxBackoff.
func backoff(attempt int) time.Duration {
	d := firstBackoff
	for i := 1; i < attempt && d < maxBackoff; i++ {
		d *= 2
	}
	return min(d, maxBackoff)
}

func (s *stream) open(rawURL, secret string) error {
	target, err := serverURL(rawURL, secret)
	if err != nil {
		return err
	}
	s.target = target

	conn, _, err := ws.DefaultDialer.Dial(target, nil)
	if err != nil {
		return fmt.Errorf("websocket dial failed: %w", err)
	}
	s.attach(conn)
	return nil
}

func (s *stream) attach(conn *ws.Conn) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conn = conn
	s.mu.Unlock()

	go s.pump(conn)
	go s.read(conn)
}

func (s *stream) pump(conn *ws.Conn) {
	for {
		select {
		case <-s.done:
			return
		case data := <-s.outbox:
			if err := write(conn, data); err != nil {
				s.logger.Warn("WebSocket write failed", "error", err)
				go s.redial(conn)
				return
			}
		}
	}
}

func (s *stream) read(conn *ws.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.logger.Warn("WebSocket read failed", "error", err)
				go s.redial(conn)
			}
			return
		}

		var ack streaming.AckMessage
		if json.Unmarshal(raw, &ack) != nil || ack.Type != streaming.TypeAck {
			s.logger.Debug("Ignoring server message", "raw", string(raw))
			continue
		}
		select {
		case s.acks <- ack.For:
		default:
			s.logger.Debug("Ack backlog full, dropping", "for", ack.For)
		}
	}
}

func write(conn *ws.Conn, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(ws.TextMessage, data)
}

// redial replaces a broken connection. Both loops may report the same
// failure; only the first caller for a given conn does the work.
func (s *stream) redial(broken *ws.Conn) {
	s.mu.Lock()
	if s.closed || s.conn != broken {
		s.mu.Unlock()
		return
	}
	s.conn = nil
	s.mu.Unlock()
	_ = broken.Close()

	for attempt := 1; attempt <= redialTries; attempt++ {
		wait := backoff(attempt)
		s.logger.Info("Reconnecting to results server", "attempt", attempt, "wait", wait)
		select {
		case <-s.done:
			return
		case <-time.After(wait):
		}

		conn, _, err := ws.DefaultDialer.Dial(s.target, nil)
		if err != nil {
			s.logger.Warn("Reconnect failed", "attempt", attempt, "error", err)
			continue
		}

		s.mu.Lock()
		replay := s.replay
		s.mu.Unlock()
		if replay != nil {
			if err := write(conn, replay); err != nil {
				s.logger.Warn("Failed to replay start_batch", "error", err)
				_ = conn.Close()
				continue
			}
		}

		s.logger.Info("Reconnected to results server", "attempt", attempt)
		s.attach(conn)
		return
	}
	s.logger.Error("Giving up on results server", "attempts", redialTries)
}

// send queues data without blocking. Messages are dropped while the outbox
// is full.
func (s *stream) send(data []byte) {
	select {
	case s.outbox <- data:
	default:
		if s.dropped.Add(1) == 1 {
			s.logger.Warn("WebSocket outbox full, dropping messages")
		}
	}
}

// request sends data and waits for the server to ack kind.
func (s *stream) request(data []byte, kind string, timeout time.Duration) error {
	s.send(data)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case got := <-s.acks:
			if got == kind {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("timeout waiting for ack of %q", kind)
		case <-s.done:
			return fmt.Errorf("%w while waiting for ack of %q", ErrClosed, kind)
		}
	}
}

func (s *stream) setReplay(data []byte) {
	s.mu.Lock()
	s.replay = data
	s.mu.Unlock()
}

// shutdown sends a close frame and stops both loops.
func (s *stream) shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if n := s.dropped.Load(); n > 0 {
		s.logger.Warn("WebSocket messages dropped", "count", n)
	}
	if conn == nil {
		return nil
	}
	_ = conn.WriteMessage(ws.CloseMessage, ws.FormatCloseMessage(ws.CloseNormalClosure, ""))
	return conn.Close()
}
