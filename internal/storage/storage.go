package storage

import (
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/models"
)

// Store persists generated-artifact metadata and share records.
// Artifacts are immutable once saved; SaveShare is idempotent on the
// (receiver, artifact) pair.
type Store interface {
	SaveArtifact(artifact models.GeneratedArtifact) error
	GetArtifact(id string) (models.GeneratedArtifact, bool)
	ListArtifactsByOwner(ownerID string) ([]models.GeneratedArtifact, error)
	SaveShare(share models.ShareRecord) error
}

var instance Store

// Initialize selects the process-wide store implementation.
func Initialize(s Store) {
	instance = s
}

// Get returns the process-wide store.
func Get() Store {
	return instance
}
