package events

import (
	"encoding/json"
	"time"
)

const (
	TypePing               = "ping"
	TypeGenerationReplaced = "generation_replaced"
	TypeIngestFailed       = "ingest_failed"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// GenerationReplaced is the payload of TypeGenerationReplaced.
type GenerationReplaced struct {
	RunID      string `json:"run_id"`
	Persisted  int    `json:"persisted"`
	Considered int    `json:"considered"`
	Failed     int    `json:"failed_sources"`
}

// IngestFailed is the payload of TypeIngestFailed.
type IngestFailed struct {
	RunID string `json:"run_id"`
	Error string `json:"error"`
}

// MakeEvent renders an event envelope as the JSON line sent to SSE clients.
func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
