package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/viperball/matchsim/pkg/core"
	"github.com/viperball/matchsim/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL        string
	Secret     string
	WritePlays bool
	Logger     *slog.Logger
}

// Backend streams batch results to a results server. Start and end of a
// batch wait for an ack; games are fire-and-forget.
type Backend struct {
	conn *stream
	cfg  Config
}

// New creates a new WebSocket storage backend.
func New(cfg Config) *Backend {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newStream(logger),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.open(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.shutdown()
}

// Dropped returns how many messages were discarded because the send
// buffer was full.
func (b *Backend) Dropped() uint64 {
	return b.conn.dropped.Load()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope queues a message without waiting for the server.
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// sendEnvelopeAndWait marshals the payload and waits for a server ack.
func (b *Backend) sendEnvelopeAndWait(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	return b.conn.request(data, msgType, ackTimeout)
}

// StartBatch announces the batch and waits for server ack.
func (b *Backend) StartBatch(batch *core.Batch) error {
	data, err := marshalEnvelope(streaming.TypeStartBatch, streaming.StartBatchPayload{Batch: batch})
	if err != nil {
		return err
	}

	b.conn.setReplay(data)
	return b.conn.request(data, streaming.TypeStartBatch, ackTimeout)
}

// EndBatch sends the summary and waits for server ack.
func (b *Backend) EndBatch(s *core.BatchSummary) error {
	defer b.conn.setReplay(nil)
	return b.sendEnvelopeAndWait(streaming.TypeEndBatch, s)
}

func (b *Backend) RecordGame(r *core.GameRecord) error {
	return b.sendEnvelope(streaming.TypeGameCompleted, streaming.NewGameCompleted(r, b.cfg.WritePlays))
}

func (b *Backend) RecordFailure(f *core.GameFailure) error {
	return b.sendEnvelope(streaming.TypeGameFailed, f)
}
