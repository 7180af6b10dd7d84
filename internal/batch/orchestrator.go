package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/models"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/pipeline"
	"github.com/go-playground/validator/v10"
)

// GenerateResponse is what a Generator returns for one recipient.
type GenerateResponse struct {
	ArtifactID  string
	ArtifactURL string
	FileName    string
}

// Generator produces one personalized document. The HTTP client in this
// package is the production implementation; tests stub it.
type Generator interface {
	Generate(ctx context.Context, recipient models.RecipientDescriptor) (*GenerateResponse, error)
}

// Runner owns the cross-run state of the batch driver: the generator,
// the progress hook, and the cumulative set of recipients already served
// during this client's lifetime. The processed set only deprioritizes
// recipients in a selection UI; it never blocks re-selection.
type Runner struct {
	gen Generator

	// OnProgress, when set, is invoked before each pipeline call.
	OnProgress func(Progress)

	// PerCallEstimate sizes the remaining-time estimate. Zero disables it.
	PerCallEstimate time.Duration

	processed map[string]struct{}
	validate  *validator.Validate
}

func NewRunner(gen Generator) *Runner {
	return &Runner{
		gen:       gen,
		processed: make(map[string]struct{}),
		validate:  validator.New(),
	}
}

// AlreadyProcessed reports whether a recipient succeeded in any earlier
// run of this Runner.
func (r *Runner) AlreadyProcessed(recipientID string) bool {
	_, ok := r.processed[recipientID]
	return ok
}

// Run processes the recipients in order, one at a time. Ordinary
// failures are recorded and the loop continues; a session-expiry failure
// is recorded and the loop halts immediately, leaving the remaining
// recipients unattempted. In that case Run returns the partial result
// list together with pipeline.ErrSessionExpired so the caller can route
// to reauthentication instead of a results view.
func (r *Runner) Run(ctx context.Context, recipients []models.RecipientDescriptor) ([]Result, error) {
	if len(recipients) == 0 {
		return nil, errors.New("no recipients selected")
	}
	if len(recipients) > MaxBatchSize {
		return nil, fmt.Errorf("batch of %d exceeds the limit of %d recipients", len(recipients), MaxBatchSize)
	}
	for _, rec := range recipients {
		if err := r.validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("invalid recipient %q: %w", rec.ID, err)
		}
	}

	sess := NewSession(recipients)
	results := make([]Result, 0, len(recipients))

	for sess.Cursor < len(sess.Recipients) {
		rec := sess.Recipients[sess.Cursor]
		r.reportProgress(sess)

		result, signal := r.step(ctx, rec)
		results = append(results, result)

		if result.Success {
			sess.Outcomes[rec.ID] = OutcomeSuccess
			r.processed[rec.ID] = struct{}{}
		} else {
			sess.Outcomes[rec.ID] = OutcomeFailed
		}

		if signal == HaltBatch {
			return results, pipeline.ErrSessionExpired
		}
		sess.Cursor++
	}
	return results, nil
}

// step runs the pipeline for one recipient and classifies the outcome
// into a result entry plus a loop-control signal.
func (r *Runner) step(ctx context.Context, rec models.RecipientDescriptor) (Result, Signal) {
	resp, err := r.gen.Generate(ctx, rec)
	if err != nil {
		if errors.Is(err, pipeline.ErrSessionExpired) {
			return Result{Recipient: rec, Error: errSessionExpired}, HaltBatch
		}
		return Result{Recipient: rec, Error: errFailed}, Continue
	}
	return Result{
		Recipient:   rec,
		ArtifactID:  resp.ArtifactID,
		ArtifactURL: resp.ArtifactURL,
		FileName:    resp.FileName,
		Success:     true,
	}, Continue
}

func (r *Runner) reportProgress(sess *Session) {
	if r.OnProgress == nil {
		return
	}
	remaining := len(sess.Recipients) - sess.Cursor
	r.OnProgress(Progress{
		Index:              sess.Cursor,
		Total:              len(sess.Recipients),
		Current:            sess.Recipients[sess.Cursor],
		EstimatedRemaining: time.Duration(remaining) * r.PerCallEstimate,
	})
}
