package handlers

import (
	"net/http"

	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/models"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/office"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/pipeline"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/services"
	"github.com/gin-gonic/gin"
)

var (
	gen          *pipeline.Generator
	officeClient *office.Client
	tempDir      string
)

// Configure wires the handler package to its collaborators. Called once
// from main before routes are registered.
func Configure(g *pipeline.Generator, oc *office.Client, uploadTempDir string) {
	gen = g
	officeClient = oc
	tempDir = uploadTempDir
}

// objectStoreHealth reports reachability of the durable object store.
// Nil until InitializeMinio runs, so local setups without MinIO still
// report healthy. Swapped out in tests.
var objectStoreHealth = func() error {
	if m := services.GetMinioService(); m != nil {
		return m.CheckConnection()
	}
	return nil
}

func HealthCheck(c *gin.Context) {
	if err := objectStoreHealth(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "objectStore": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// creatorFromContext reads the identity the auth middleware stored.
func creatorFromContext(c *gin.Context) (models.Creator, bool) {
	id, ok := c.Get("user_id")
	if !ok {
		return models.Creator{}, false
	}
	return models.Creator{
		ID:   id.(string),
		Name: c.GetString("user_name"),
		PRN:  c.GetString("user_prn"),
	}, true
}
