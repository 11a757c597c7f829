package collect

import (
	"encoding/json"

	"github.com/ichfliegemitdemflugzeug/bankhop/internal/repository"
)

// live feed message types
const (
	FeedEventReceived = "event.received"
)

// FeedMessage is a structured live-feed message.
type FeedMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// EventReceivedPayload is the payload of FeedEventReceived.
type EventReceivedPayload struct {
	TransferID string `json:"transfer_id"`
	EventType  string `json:"event_type"`
	BankID     string `json:"bank_id"`
	Page       string `json:"page"`
}

// EventReceivedMessage builds the live-feed message for a stored event.
func EventReceivedMessage(e repository.Event) []byte {
	msg := FeedMessage{
		Type: FeedEventReceived,
		Payload: EventReceivedPayload{
			TransferID: e.TransferID,
			EventType:  e.EventType,
			BankID:     e.BankID,
			Page:       e.Page,
		},
	}
	b, _ := json.Marshal(msg)
	return b
}
