package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/metrics"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/models"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/pipeline"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/services"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/template"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateDocument runs the full pipeline for one recipient: substitute
// tokens into the uploaded template, convert via the office store,
// persist the artifact, and clean up every temp object before replying.
func GenerateDocument(c *gin.Context) {
	creator, ok := creatorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "reauthenticate"})
		return
	}

	officeToken := c.GetHeader("X-Office-Token")
	if officeToken == "" {
		// no delegated token is the same condition as an expired one
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "office access token missing, reauthenticate"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no template file uploaded"})
		return
	}
	if file.Size > template.MaxTemplateSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "template exceeds the 5 MB limit"})
		return
	}
	if ext := strings.ToLower(filepath.Ext(file.Filename)); ext != ".docx" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "only .docx templates are supported"})
		return
	}

	recipientData := c.PostForm("recipientData")
	if recipientData == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "recipient data is required"})
		return
	}
	var recipient models.RecipientDescriptor
	if err := json.Unmarshal([]byte(recipientData), &recipient); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid recipient data: " + err.Error()})
		return
	}
	if recipient.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "recipient name is required"})
		return
	}

	tempPath := filepath.Join(tempDir, uuid.New().String()+".docx")
	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to store uploaded template"})
		return
	}

	result, err := gen.Generate(c.Request.Context(), pipeline.Request{
		TemplatePath: tempPath,
		TemplateName: file.Filename,
		Office:       officeClient.Session(officeToken),
		Creator:      creator,
		Recipient:    recipient,
	})
	if err != nil {
		status, kind := classify(err)
		metrics.GenerationFailures.WithLabelValues(kind).Inc()
		c.JSON(status, gin.H{"success": false, "message": err.Error()})
		return
	}

	metrics.DocumentsGenerated.Inc()
	if err := services.PublishEvent("documents.generated", gin.H{
		"doc_id":        result.ArtifactID,
		"owner_id":      creator.ID,
		"recipient_id":  recipient.ID,
		"recipient_prn": recipient.PRN,
		"file_name":     result.FileName,
		"generated_at":  time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("warning: failed to publish documents.generated event: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"studentId": result.RecipientID,
		"name":      recipient.Name,
		"pdfUrl":    result.ArtifactURL,
		"docId":     result.ArtifactID,
		"fileName":  result.FileName,
	})
}

// classify maps a pipeline error onto an HTTP status and a metrics label.
func classify(err error) (int, string) {
	var verr *pipeline.ValidationError
	var uerr *pipeline.UpstreamError
	var perr *pipeline.PersistenceError

	switch {
	case errors.Is(err, pipeline.ErrSessionExpired):
		return http.StatusUnauthorized, "session_expired"
	case errors.As(err, &verr):
		return http.StatusBadRequest, "validation"
	case errors.As(err, &uerr):
		return http.StatusInternalServerError, "upstream"
	case errors.As(err, &perr):
		return http.StatusInternalServerError, "persistence"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
