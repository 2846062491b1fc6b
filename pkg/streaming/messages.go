// Package streaming defines the messages a simulator streams to a results
// server over WebSocket.
package streaming

import (
	"encoding/json"

	"github.com/viperball/matchsim/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartBatch    = "start_batch"
	TypeEndBatch      = "end_batch"
	TypeGameCompleted = "game_completed"
	TypeGameFailed    = "game_failed"
	TypeAck           = "ack"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartBatchPayload announces a batch and the teams it pairs.
type StartBatchPayload struct {
	Batch *core.Batch `json:"batch"`
	Teams []string    `json:"teams,omitempty"`
}

// GameCompletedPayload carries one finished game. Plays are omitted unless
// the backend is configured to stream them.
type GameCompletedPayload struct {
	BatchID    string           `json:"batch_id"`
	Index      int              `json:"index"`
	Seed       int64            `json:"seed"`
	DurationMs float64          `json:"duration_ms"`
	Result     *core.GameResult `json:"result"`
}

// NewGameCompleted builds the payload for a game record.
func NewGameCompleted(r *core.GameRecord, withPlays bool) GameCompletedPayload {
	res := r.Result
	if res != nil && !withPlays {
		stripped := *res
		stripped.PlayByPlay = nil
		res = &stripped
	}
	return GameCompletedPayload{
		BatchID:    r.BatchID,
		Index:      r.Index,
		Seed:       r.Seed,
		DurationMs: float64(r.Duration.Microseconds()) / 1000,
		Result:     res,
	}
}
