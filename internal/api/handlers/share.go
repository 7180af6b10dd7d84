package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/metrics"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/models"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/services"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/storage"
	"github.com/gin-gonic/gin"
)

type shareRequest struct {
	DocumentID string `json:"documentId" binding:"required"`
	ReceiverID string `json:"receiverId" binding:"required"`
}

type bulkShareRequest struct {
	DocumentID  string   `json:"documentId" binding:"required"`
	ReceiverIDs []string `json:"receiverIds" binding:"required,min=1"`
}

// ShareDocument records one artifact→receiver association. Re-sharing
// the same artifact to the same receiver succeeds without a new row.
func ShareDocument(c *gin.Context) {
	creator, ok := creatorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "reauthenticate"})
		return
	}

	var req shareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "documentId and receiverId are required"})
		return
	}

	if err := shareOne(creator.ID, req.DocumentID, req.ReceiverID); err != nil {
		status := http.StatusInternalServerError
		if err == errDocumentNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ShareDocumentBulk fans one artifact out to many receivers. Each insert
// is independent and idempotent, so they run concurrently.
func ShareDocumentBulk(c *gin.Context) {
	creator, ok := creatorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "reauthenticate"})
		return
	}

	var req bulkShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "documentId and receiverIds are required"})
		return
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []string
	)
	for _, receiverID := range req.ReceiverIDs {
		wg.Add(1)
		go func(receiverID string) {
			defer wg.Done()
			if err := shareOne(creator.ID, req.DocumentID, receiverID); err != nil {
				mu.Lock()
				failures = append(failures, receiverID)
				mu.Unlock()
			}
		}(receiverID)
	}
	wg.Wait()

	if len(failures) > 0 {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "some shares failed",
			"failed":  failures,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "shared": len(req.ReceiverIDs)})
}

var errDocumentNotFound = &lookupError{"document not found"}

type lookupError struct{ msg string }

func (e *lookupError) Error() string { return e.msg }

func shareOne(senderID, documentID, receiverID string) error {
	if _, ok := storage.Get().GetArtifact(documentID); !ok {
		return errDocumentNotFound
	}

	err := storage.Get().SaveShare(models.ShareRecord{
		SenderID:   senderID,
		ReceiverID: receiverID,
		ArtifactID: documentID,
		SharedAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	metrics.DocumentsShared.Inc()
	if err := services.PublishEvent("documents.shared", gin.H{
		"doc_id":      documentID,
		"sender_id":   senderID,
		"receiver_id": receiverID,
	}); err != nil {
		log.Printf("warning: failed to publish documents.shared event: %v", err)
	}
	return nil
}
