// Package office is the HTTP client for the upstream office-document
// store used to stage rendered templates and convert them to PDF. The
// staged object exists only for the duration of one generation call.
package office

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrUnauthorized is returned when the upstream rejects the delegated
// access token. Callers treat it as a session-expiry condition.
var ErrUnauthorized = errors.New("office store rejected the access token")

// Client talks to the office-document store. It is safe for concurrent
// use; per-user state lives on Session.
type Client struct {
	baseURL string
	hc      *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
	}
}

// Session binds a Client to one user's delegated access token.
func (c *Client) Session(token string) *Session {
	return &Session{c: c, token: token}
}

type Session struct {
	c     *Client
	token string
}

type stagedObject struct {
	ID string `json:"id"`
}

// Stage uploads rendered document bytes and returns the staging handle.
func (s *Session) Stage(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	u := fmt.Sprintf("%s/files/%s/content", s.c.baseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, r)
	if err != nil {
		return "", fmt.Errorf("build staging request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")

	resp, err := s.c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("stage document: %w", err)
	}
	defer resp.Body.Close()

	if err := s.checkStatus(resp, http.StatusOK, http.StatusCreated); err != nil {
		return "", fmt.Errorf("stage document: %w", err)
	}

	var staged stagedObject
	if err := json.NewDecoder(resp.Body).Decode(&staged); err != nil {
		return "", fmt.Errorf("decode staging response: %w", err)
	}
	if staged.ID == "" {
		return "", errors.New("staging response missing object id")
	}
	return staged.ID, nil
}

// Convert asks the store to render the staged object as PDF and streams
// back the converted bytes. The caller owns the returned ReadCloser.
func (s *Session) Convert(ctx context.Context, handle string) (io.ReadCloser, error) {
	u := fmt.Sprintf("%s/files/%s/content?format=pdf", s.c.baseURL, url.PathEscape(handle))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build conversion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("convert document: %w", err)
	}
	if err := s.checkStatus(resp, http.StatusOK); err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("convert document: %w", err)
	}
	return resp.Body, nil
}

// Delete removes a staged object. Invoked on every pipeline exit path;
// the store also garbage-collects, so failures are tolerable upstream.
func (s *Session) Delete(ctx context.Context, handle string) error {
	u := fmt.Sprintf("%s/files/%s", s.c.baseURL, url.PathEscape(handle))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("delete staged object: %w", err)
	}
	defer resp.Body.Close()

	if err := s.checkStatus(resp, http.StatusOK, http.StatusNoContent, http.StatusNotFound); err != nil {
		return fmt.Errorf("delete staged object: %w", err)
	}
	return nil
}

func (s *Session) checkStatus(resp *http.Response, ok ...int) error {
	for _, code := range ok {
		if resp.StatusCode == code {
			return nil
		}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
}
