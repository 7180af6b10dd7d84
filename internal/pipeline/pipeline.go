// Package pipeline implements the single-document generation pipeline:
// token substitution, staging with the upstream office store, PDF
// conversion, durable persistence, and guaranteed cleanup of every
// ephemeral resource on success and failure alike.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/models"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/namegen"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/office"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/storage"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/template"
	"github.com/google/uuid"
)

// OfficeSession stages rendered documents with the upstream store,
// converts them to PDF, and deletes staged objects.
type OfficeSession interface {
	Stage(ctx context.Context, name string, r io.Reader, size int64) (string, error)
	Convert(ctx context.Context, handle string) (io.ReadCloser, error)
	Delete(ctx context.Context, handle string) error
}

// ObjectStore persists converted artifacts durably.
type ObjectStore interface {
	Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, objectName string) error
}

// Scanner inspects an uploaded template before rendering. Optional.
type Scanner interface {
	Scan(path string) error
}

// Generator runs the generation pipeline. One instance serves all
// requests; per-call state (temp files, staging handle) is request-local.
type Generator struct {
	Objects ObjectStore
	Store   storage.Store
	Scanner Scanner
	TempDir string
}

// Request carries one generation call: the uploaded template (already
// saved to a local temp file by the transport layer), the office session
// holding the caller's delegated token, and the identity pair.
type Request struct {
	TemplatePath string
	TemplateName string
	Office       OfficeSession
	Creator      models.Creator
	Recipient    models.RecipientDescriptor
}

// Result is returned once the artifact is durable and all ephemeral
// state is gone.
type Result struct {
	ArtifactID  string
	ArtifactURL string
	FileName    string
	RecipientID string
}

// Generate runs Received → Rendered → Staged → Converted → Persisted →
// CleanedUp for a single recipient. Whatever happens, the uploaded
// template copy, the rendered temp file, the converted temp file, and
// the remote staging object are all released before it returns.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	cl := &cleanup{}
	cl.addFile(req.TemplatePath)
	defer cl.run()

	if req.Recipient.Name == "" {
		return nil, &ValidationError{Reason: "recipient name is required"}
	}
	if req.Office == nil {
		return nil, &ValidationError{Reason: "no office session for this call"}
	}

	if g.Scanner != nil {
		if err := g.Scanner.Scan(req.TemplatePath); err != nil {
			return nil, &ValidationError{Reason: fmt.Sprintf("template rejected by scan: %v", err)}
		}
	}

	templateBytes, err := os.ReadFile(req.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("read uploaded template: %w", err)
	}

	// Received → Rendered
	rendered, err := template.Substitute(templateBytes, req.Recipient.Name, req.Recipient.PRN)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	artifactID := uuid.New().String()
	renderedPath := filepath.Join(g.TempDir, artifactID+".docx")
	if err := os.WriteFile(renderedPath, rendered, 0o600); err != nil {
		return nil, fmt.Errorf("write rendered document: %w", err)
	}
	cl.addFile(renderedPath)

	// Rendered → Staged
	handle, err := req.Office.Stage(ctx, artifactID+".docx", bytes.NewReader(rendered), int64(len(rendered)))
	if err != nil {
		return nil, classifyOffice("staging", err)
	}
	cl.addRemote(func() error {
		// cleanup outlives a cancelled request context
		return req.Office.Delete(context.WithoutCancel(ctx), handle)
	})

	// Staged → Converted
	converted, err := req.Office.Convert(ctx, handle)
	if err != nil {
		return nil, classifyOffice("conversion", err)
	}

	convertedPath := filepath.Join(g.TempDir, artifactID+".pdf")
	pdfSize, err := writeFileFrom(convertedPath, converted)
	converted.Close()
	if err != nil {
		cl.addFile(convertedPath)
		return nil, &UpstreamError{Stage: "conversion", Err: err}
	}
	cl.addFile(convertedPath)

	// Converted → Persisted
	fileName := namegen.Derive(req.TemplateName, req.Creator.Name, req.Creator.PRN,
		req.Recipient.Name, req.Recipient.PRN)
	objectName := artifactID + "/" + fileName

	pdf, err := os.Open(convertedPath)
	if err != nil {
		return nil, fmt.Errorf("reopen converted document: %w", err)
	}
	artifactURL, err := g.Objects.Upload(ctx, objectName, pdf, pdfSize, "application/pdf")
	pdf.Close()
	if err != nil {
		return nil, &PersistenceError{Op: "artifact upload", Err: err}
	}

	artifact := models.GeneratedArtifact{
		ID:            artifactID,
		OwnerID:       req.Creator.ID,
		OriginalName:  req.TemplateName,
		FileName:      fileName,
		ArtifactURL:   artifactURL,
		RecipientName: req.Recipient.Name,
		RecipientPRN:  req.Recipient.PRN,
		CreatedAt:     time.Now().UTC(),
	}
	if err := g.Store.SaveArtifact(artifact); err != nil {
		if delErr := g.Objects.Delete(context.WithoutCancel(ctx), objectName); delErr != nil {
			log.Printf("[PIPELINE] failed to remove object after metadata failure: %v", delErr)
		}
		return nil, &PersistenceError{Op: "artifact metadata", Err: err}
	}

	// Persisted → CleanedUp → Done: the deferred cleanup deletes the
	// staging object and both temp files before we return.
	return &Result{
		ArtifactID:  artifactID,
		ArtifactURL: artifactURL,
		FileName:    fileName,
		RecipientID: req.Recipient.ID,
	}, nil
}

func classifyOffice(stage string, err error) error {
	if errors.Is(err, office.ErrUnauthorized) {
		return fmt.Errorf("%s: %w", stage, ErrSessionExpired)
	}
	return &UpstreamError{Stage: stage, Err: err}
}

func writeFileFrom(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return n, err
}
