package handlers

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"
)

type documentSharedEvent struct {
	DocID      string `json:"doc_id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
}

// HandleDocumentShared consumes documents.shared for the inbox
// notification side.
func HandleDocumentShared(msg *nats.Msg) {
	var payload documentSharedEvent
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Printf("[NATS] documents.shared: invalid payload: %v", err)
		_ = msg.Nak()
		return
	}

	log.Printf("[NATS] document %s shared with %s", payload.DocID, payload.ReceiverID)

	// TODO: push a websocket notification once the inbox UI supports it

	_ = msg.Ack()
}
