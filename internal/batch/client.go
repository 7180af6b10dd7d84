package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/models"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/pipeline"
)

// HTTPGenerator calls the server's generation endpoint once per
// recipient, re-reading the template file for each call so a run never
// holds the whole batch in memory.
type HTTPGenerator struct {
	serverURL    string
	sessionToken string
	officeToken  string
	templatePath string
	hc           *http.Client
}

func NewHTTPGenerator(serverURL, sessionToken, officeToken, templatePath string) *HTTPGenerator {
	return &HTTPGenerator{
		serverURL:    serverURL,
		sessionToken: sessionToken,
		officeToken:  officeToken,
		templatePath: templatePath,
		hc:           &http.Client{Timeout: 2 * time.Minute},
	}
}

type generateReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	PDFURL  string `json:"pdfUrl"`
	DocID   string `json:"docId"`
	Name    string `json:"name"`
	File    string `json:"fileName"`
}

func (g *HTTPGenerator) Generate(ctx context.Context, recipient models.RecipientDescriptor) (*GenerateResponse, error) {
	body, contentType, err := g.buildForm(recipient)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.serverURL+"/api/documents/generate", body)
	if err != nil {
		return nil, fmt.Errorf("build generation request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+g.sessionToken)
	req.Header.Set("X-Office-Token", g.officeToken)

	resp, err := g.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call generation endpoint: %w", err)
	}
	defer resp.Body.Close()

	var reply generateReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decode generation response (status %d): %w", resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%s: %w", reply.Message, pipeline.ErrSessionExpired)
	case resp.StatusCode != http.StatusOK || !reply.Success:
		return nil, fmt.Errorf("generation failed: %s", reply.Message)
	}
	return &GenerateResponse{ArtifactID: reply.DocID, ArtifactURL: reply.PDFURL, FileName: reply.File}, nil
}

func (g *HTTPGenerator) buildForm(recipient models.RecipientDescriptor) (io.Reader, string, error) {
	f, err := os.Open(g.templatePath)
	if err != nil {
		return nil, "", fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filepath.Base(g.templatePath))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("copy template into form: %w", err)
	}

	recipientJSON, err := json.Marshal(recipient)
	if err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("recipientData", string(recipientJSON)); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
