package models

import (
	"time"
)

// RecipientDescriptor is the per-call identity payload: who the document
// is personalized for. PRN is an opaque alphanumeric identifier printed
// verbatim onto the document.
type RecipientDescriptor struct {
	ID   string `json:"id" binding:"required" validate:"required"`
	Name string `json:"name" binding:"required" validate:"required"`
	PRN  string `json:"prn" validate:"required,alphanum"`
}

// GeneratedArtifact is the persisted metadata row for one converted
// document. Rows are immutable; regenerating for the same recipient
// creates a new row.
type GeneratedArtifact struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	OriginalName  string    `json:"original_name"`
	FileName      string    `json:"file_name"`
	ArtifactURL   string    `json:"artifact_url"`
	RecipientName string    `json:"recipient_name"`
	RecipientPRN  string    `json:"recipient_prn"`
	CreatedAt     time.Time `json:"created_at"`
}

// ShareRecord associates a generated artifact with a receiver's inbox.
// The (ReceiverID, ArtifactID) pair is unique; re-sharing is a no-op.
type ShareRecord struct {
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	ArtifactID string    `json:"artifact_id"`
	SharedAt   time.Time `json:"shared_at"`
	Seen       bool      `json:"seen"`
}

// Creator identifies the authenticated user generating documents. The
// name and PRN drive the output filename derivation.
type Creator struct {
	ID   string
	Name string
	PRN  string
}
