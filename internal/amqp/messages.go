package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finboard/internal/core"
)

// PeriodRefreshMessage announces that the data of a period changed. The
// consumer drops cached results for the key and warms them again.
type PeriodRefreshMessage struct {
	ID        string         `json:"id"`
	Key       core.PeriodKey `json:"key"`
	Timestamp time.Time      `json:"timestamp"`
}

func NewPeriodRefreshMessage(key core.PeriodKey) *PeriodRefreshMessage {
	return &PeriodRefreshMessage{
		ID:        uuid.NewString(),
		Key:       key,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *PeriodRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PeriodRefreshMessageFromJSON decodes and validates a message body.
func PeriodRefreshMessageFromJSON(data []byte) (*PeriodRefreshMessage, error) {
	var msg PeriodRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Key.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownPeriodKind, msg.Key.Kind)
	}
	msg.Key = core.NewPeriodKey(msg.Key.Kind, msg.Key.Label, msg.Key.Year)
	return &msg, nil
}
