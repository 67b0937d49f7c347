package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// LimitAlertMessage is published when an expense pushes a spending limit
// across the warning or exceeded threshold.
type LimitAlertMessage struct {
	LimitID    string          `json:"limitId"`
	Category   string          `json:"category"`
	Period     string          `json:"period"`
	Amount     decimal.Decimal `json:"amount"`
	Spent      decimal.Decimal `json:"spent"`
	Percentage float64         `json:"percentage"`
	Level      string          `json:"level"`
	Timestamp  time.Time       `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes
func (m *LimitAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LimitAlertMessageFromJSON decodes a message body.
func LimitAlertMessageFromJSON(data []byte) (*LimitAlertMessage, error) {
	var msg LimitAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
