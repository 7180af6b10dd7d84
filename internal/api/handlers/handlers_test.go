package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/office"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/pipeline"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/storage"
	"github.com/gin-gonic/gin"
)

type memObjects struct {
	objects map[string][]byte
}

func (m *memObjects) Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.objects[objectName] = data
	return "/files/" + objectName, nil
}

func (m *memObjects) Delete(ctx context.Context, objectName string) error {
	delete(m.objects, objectName)
	return nil
}

// fakeOfficeStore stands in for the upstream office service over HTTP.
type fakeOfficeStore struct {
	unauthorized bool
}

func (f *fakeOfficeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.unauthorized {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	switch r.Method {
	case http.MethodPut:
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"staged-1"}`))
	case http.MethodGet:
		w.Write([]byte("%PDF-1.7 converted"))
	case http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	}
}

func setupRouter(t *testing.T, upstream *fakeOfficeStore) (*gin.Engine, *storage.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	store := storage.NewMemoryStore()
	storage.Initialize(store)

	tempDir := t.TempDir()
	Configure(&pipeline.Generator{
		Objects: &memObjects{objects: make(map[string][]byte)},
		Store:   store,
		TempDir: tempDir,
	}, office.NewClient(srv.URL, 5*time.Second), tempDir)

	r := gin.New()
	authed := r.Group("/api", func(c *gin.Context) {
		c.Set("user_id", "u1")
		c.Set("user_name", "Akshat Sharma")
		c.Set("user_prn", "123A001")
	})
	authed.POST("/templates/validate", ValidateTemplate)
	authed.POST("/documents/generate", GenerateDocument)
	authed.POST("/documents/share", ShareDocument)
	authed.POST("/documents/share/bulk", ShareDocumentBulk)
	authed.GET("/documents", ListDocuments)
	return r, store
}

func templateFixture(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(w, `<w:t>Awarded to {name}, PRN {PRN}</w:t>`)
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func generateForm(t *testing.T, templateBytes []byte, recipientJSON string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if templateBytes != nil {
		part, err := mw.CreateFormFile("file", "ADL_Exp1_Akshat_123A001.docx")
		if err != nil {
			t.Fatal(err)
		}
		part.Write(templateBytes)
	}
	if recipientJSON != "" {
		mw.WriteField("recipientData", recipientJSON)
	}
	mw.Close()
	return &body, mw.FormDataContentType()
}

func doGenerate(t *testing.T, r *gin.Engine, body *bytes.Buffer, contentType string, officeToken string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/documents/generate", body)
	req.Header.Set("Content-Type", contentType)
	if officeToken != "" {
		req.Header.Set("X-Office-Token", officeToken)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const recipientJSON = `{"id":"r1","name":"Vedant Bhamare","prn":"123A045"}`

func TestGenerateDocumentSuccess(t *testing.T) {
	r, store := setupRouter(t, &fakeOfficeStore{})

	body, ct := generateForm(t, templateFixture(t), recipientJSON)
	w := doGenerate(t, r, body, ct, "office-tok")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var reply struct {
		Success   bool   `json:"success"`
		StudentID string `json:"studentId"`
		Name      string `json:"name"`
		PDFURL    string `json:"pdfUrl"`
		DocID     string `json:"docId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatal(err)
	}
	if !reply.Success || reply.StudentID != "r1" || reply.Name != "Vedant Bhamare" {
		t.Errorf("reply = %+v", reply)
	}
	if reply.DocID == "" || !strings.Contains(reply.PDFURL, "VedantBhamare") {
		t.Errorf("artifact reference incomplete: %+v", reply)
	}
	if _, ok := store.GetArtifact(reply.DocID); !ok {
		t.Error("artifact row not persisted")
	}
}

func TestGenerateDocumentMissingFile(t *testing.T) {
	r, _ := setupRouter(t, &fakeOfficeStore{})
	body, ct := generateForm(t, nil, recipientJSON)
	w := doGenerate(t, r, body, ct, "office-tok")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGenerateDocumentMissingRecipient(t *testing.T) {
	r, _ := setupRouter(t, &fakeOfficeStore{})
	body, ct := generateForm(t, templateFixture(t), "")
	w := doGenerate(t, r, body, ct, "office-tok")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGenerateDocumentMissingOfficeToken(t *testing.T) {
	r, _ := setupRouter(t, &fakeOfficeStore{})
	body, ct := generateForm(t, templateFixture(t), recipientJSON)
	w := doGenerate(t, r, body, ct, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestGenerateDocumentExpiredOfficeToken(t *testing.T) {
	r, _ := setupRouter(t, &fakeOfficeStore{unauthorized: true})
	body, ct := generateForm(t, templateFixture(t), recipientJSON)
	w := doGenerate(t, r, body, ct, "stale-tok")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401; body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "session expired") {
		t.Errorf("body should surface the expiry condition: %s", w.Body.String())
	}
}

func TestGenerateDocumentMalformedTemplate(t *testing.T) {
	r, _ := setupRouter(t, &fakeOfficeStore{})
	body, ct := generateForm(t, []byte("not a docx"), recipientJSON)
	w := doGenerate(t, r, body, ct, "office-tok")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body = %s", w.Code, w.Body.String())
	}
}

func shareBody(documentID, receiverID string) *bytes.Buffer {
	b, _ := json.Marshal(map[string]string{"documentId": documentID, "receiverId": receiverID})
	return bytes.NewBuffer(b)
}

func TestShareDocumentIdempotent(t *testing.T) {
	r, store := setupRouter(t, &fakeOfficeStore{})

	// generate an artifact to share
	body, ct := generateForm(t, templateFixture(t), recipientJSON)
	w := doGenerate(t, r, body, ct, "office-tok")
	var reply struct {
		DocID string `json:"docId"`
	}
	json.Unmarshal(w.Body.Bytes(), &reply)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/documents/share", shareBody(reply.DocID, "u2"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("share attempt %d: status = %d, body = %s", i+1, w.Code, w.Body.String())
		}
	}
	if got := store.ShareCount(); got != 1 {
		t.Errorf("share rows = %d, want exactly 1", got)
	}
}

func TestShareDocumentNotFound(t *testing.T) {
	r, _ := setupRouter(t, &fakeOfficeStore{})
	req := httptest.NewRequest(http.MethodPost, "/api/documents/share", shareBody("missing-doc", "u2"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestShareDocumentBulk(t *testing.T) {
	r, store := setupRouter(t, &fakeOfficeStore{})

	body, ct := generateForm(t, templateFixture(t), recipientJSON)
	w := doGenerate(t, r, body, ct, "office-tok")
	var reply struct {
		DocID string `json:"docId"`
	}
	json.Unmarshal(w.Body.Bytes(), &reply)

	payload, _ := json.Marshal(map[string]interface{}{
		"documentId":  reply.DocID,
		"receiverIds": []string{"u2", "u3", "u4", "u2"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/documents/share/bulk", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := store.ShareCount(); got != 3 {
		t.Errorf("share rows = %d, want 3 distinct receivers", got)
	}
}

func TestValidateTemplateEndpoint(t *testing.T) {
	r, _ := setupRouter(t, &fakeOfficeStore{})

	body, ct := generateForm(t, templateFixture(t), "")
	req := httptest.NewRequest(http.MethodPost, "/api/templates/validate", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var reply struct {
		Valid bool     `json:"valid"`
		Hints []string `json:"hints"`
	}
	json.Unmarshal(w.Body.Bytes(), &reply)
	if !reply.Valid {
		t.Errorf("fixture template should validate, hints: %v", reply.Hints)
	}
}

func TestHealthCheckReportsObjectStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/health", HealthCheck)

	orig := objectStoreHealth
	t.Cleanup(func() { objectStoreHealth = orig })

	objectStoreHealth = func() error { return nil }
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	objectStoreHealth = func() error { return errors.New("bucket probe failed") }
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), "degraded") {
		t.Errorf("body should report degraded state: %s", w.Body.String())
	}
}

func TestListDocuments(t *testing.T) {
	r, _ := setupRouter(t, &fakeOfficeStore{})

	body, ct := generateForm(t, templateFixture(t), recipientJSON)
	doGenerate(t, r, body, ct, "office-tok")

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var reply struct {
		Documents []json.RawMessage `json:"documents"`
	}
	json.Unmarshal(w.Body.Bytes(), &reply)
	if len(reply.Documents) != 1 {
		t.Errorf("documents = %d, want 1", len(reply.Documents))
	}
}
