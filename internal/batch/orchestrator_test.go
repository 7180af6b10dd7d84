package batch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/models"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/pipeline"
)

// scriptedGenerator fails specific recipients with configured errors and
// records the order of attempts.
type scriptedGenerator struct {
	failures map[string]error
	attempts []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, rec models.RecipientDescriptor) (*GenerateResponse, error) {
	g.attempts = append(g.attempts, rec.ID)
	if err, ok := g.failures[rec.ID]; ok {
		return nil, err
	}
	return &GenerateResponse{
		ArtifactID:  "doc-" + rec.ID,
		ArtifactURL: "/files/doc-" + rec.ID,
		FileName:    rec.Name + ".pdf",
	}, nil
}

func recipients(n int) []models.RecipientDescriptor {
	out := make([]models.RecipientDescriptor, n)
	for i := range out {
		out[i] = models.RecipientDescriptor{
			ID:   fmt.Sprintf("r%d", i+1),
			Name: fmt.Sprintf("Recipient %d", i+1),
			PRN:  fmt.Sprintf("123A%03d", i+1),
		}
	}
	return out
}

func TestRunAllSucceed(t *testing.T) {
	gen := &scriptedGenerator{}
	runner := NewRunner(gen)

	results, err := runner.Run(context.Background(), recipients(3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, res := range results {
		if !res.Success {
			t.Errorf("result %d not successful: %+v", i, res)
		}
		if res.ArtifactID == "" || res.ArtifactURL == "" {
			t.Errorf("result %d missing artifact reference: %+v", i, res)
		}
	}
	for _, id := range []string{"r1", "r2", "r3"} {
		if !runner.AlreadyProcessed(id) {
			t.Errorf("recipient %s missing from processed set", id)
		}
	}
}

func TestRunHaltsOnSessionExpiry(t *testing.T) {
	gen := &scriptedGenerator{failures: map[string]error{
		"r3": fmt.Errorf("upstream: %w", pipeline.ErrSessionExpired),
	}}
	runner := NewRunner(gen)

	results, err := runner.Run(context.Background(), recipients(5))
	if !errors.Is(err, pipeline.ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3 (r1, r2, and the expiry entry for r3)", len(results))
	}
	if !results[0].Success || !results[1].Success {
		t.Errorf("r1/r2 should have succeeded: %+v", results[:2])
	}
	last := results[2]
	if last.Success || last.Error != "session-expired" {
		t.Errorf("r3 entry = %+v, want session-expired failure", last)
	}
	if len(gen.attempts) != 3 {
		t.Errorf("attempts = %v; r4 and r5 must never be attempted", gen.attempts)
	}
	if runner.AlreadyProcessed("r3") {
		t.Error("failed recipient must not enter the processed set")
	}
}

func TestRunContinuesOnOrdinaryFailure(t *testing.T) {
	gen := &scriptedGenerator{failures: map[string]error{
		"r3": errors.New("conversion backend unavailable"),
	}}
	runner := NewRunner(gen)

	results, err := runner.Run(context.Background(), recipients(5))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("got %d results, want all 5 attempted", len(results))
	}
	if results[2].Success || results[2].Error != "failed" {
		t.Errorf("r3 entry = %+v, want ordinary failure", results[2])
	}
	successes := 0
	for _, res := range results {
		if res.Success {
			successes++
		}
	}
	if successes != 4 {
		t.Errorf("successes = %d, want 4", successes)
	}
}

func TestRunProgressReporting(t *testing.T) {
	gen := &scriptedGenerator{}
	runner := NewRunner(gen)
	runner.PerCallEstimate = 10 * time.Second

	var seen []Progress
	runner.OnProgress = func(p Progress) { seen = append(seen, p) }

	if _, err := runner.Run(context.Background(), recipients(2)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("progress reported %d times, want 2", len(seen))
	}
	if seen[0].Index != 0 || seen[0].Total != 2 || seen[0].Current.ID != "r1" {
		t.Errorf("first progress = %+v", seen[0])
	}
	if seen[0].EstimatedRemaining != 20*time.Second || seen[1].EstimatedRemaining != 10*time.Second {
		t.Errorf("estimates = %v, %v", seen[0].EstimatedRemaining, seen[1].EstimatedRemaining)
	}
}

func TestRunBounds(t *testing.T) {
	runner := NewRunner(&scriptedGenerator{})

	if _, err := runner.Run(context.Background(), nil); err == nil {
		t.Error("empty batch must be rejected")
	}
	if _, err := runner.Run(context.Background(), recipients(MaxBatchSize+1)); err == nil {
		t.Error("oversized batch must be rejected")
	}
	if _, err := runner.Run(context.Background(), []models.RecipientDescriptor{{ID: "x"}}); err == nil {
		t.Error("recipient without name/prn must be rejected")
	}
}

func TestProcessedSetAccumulatesAcrossRuns(t *testing.T) {
	gen := &scriptedGenerator{failures: map[string]error{"r2": errors.New("boom")}}
	runner := NewRunner(gen)

	if _, err := runner.Run(context.Background(), recipients(2)); err != nil {
		t.Fatalf("first run: %v", err)
	}
	// second run: r2 retried and now succeeds
	gen.failures = nil
	if _, err := runner.Run(context.Background(), recipients(2)[1:]); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !runner.AlreadyProcessed("r1") || !runner.AlreadyProcessed("r2") {
		t.Error("processed set should accumulate across runs")
	}
}
