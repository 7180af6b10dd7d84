// Package batch drives the single-document pipeline once per selected
// recipient, strictly sequentially, with partial-failure isolation and
// an immediate halt on session expiry.
package batch

import (
	"time"

	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/models"
)

// MaxBatchSize bounds one orchestration run.
const MaxBatchSize = 10

// Outcome is the per-recipient state within a session.
type Outcome string

const (
	OutcomePending Outcome = "pending"
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Signal is the loop-control value produced by each step. Making the
// halt condition a value (rather than inline branching) keeps it
// testable on its own.
type Signal int

const (
	Continue Signal = iota
	HaltBatch
)

// Session is the transient state of one orchestration run: the ordered
// recipient list, the cursor, and per-recipient outcomes.
type Session struct {
	Recipients []models.RecipientDescriptor
	Cursor     int
	Outcomes   map[string]Outcome
}

func NewSession(recipients []models.RecipientDescriptor) *Session {
	outcomes := make(map[string]Outcome, len(recipients))
	for _, r := range recipients {
		outcomes[r.ID] = OutcomePending
	}
	return &Session{Recipients: recipients, Outcomes: outcomes}
}

// Progress is reported before each pipeline call for UI consumption.
type Progress struct {
	Index              int
	Total              int
	Current            models.RecipientDescriptor
	EstimatedRemaining time.Duration
}

// Result is one per-recipient entry in the batch result list.
type Result struct {
	Recipient   models.RecipientDescriptor `json:"recipient"`
	ArtifactID  string                     `json:"artifactId,omitempty"`
	ArtifactURL string                     `json:"artifactUrl,omitempty"`
	FileName    string                     `json:"fileName,omitempty"`
	Success     bool                       `json:"success"`
	Error       string                     `json:"error,omitempty"` // "failed" or "session-expired"
}

const (
	errFailed         = "failed"
	errSessionExpired = "session-expired"
)
