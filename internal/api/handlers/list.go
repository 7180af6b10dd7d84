package handlers

import (
	"net/http"

	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/storage"
	"github.com/gin-gonic/gin"
)

// ListDocuments returns the caller's generated artifacts, newest first.
func ListDocuments(c *gin.Context) {
	creator, ok := creatorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "reauthenticate"})
		return
	}

	documents, err := storage.Get().ListArtifactsByOwner(creator.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to list documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"documents": documents,
	})
}
