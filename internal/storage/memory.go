package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/models"
)

// MemoryStore implements Store in memory. Used in tests and for running
// the server without a database.
type MemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]models.GeneratedArtifact
	shares    map[string]models.ShareRecord // keyed receiver|document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		artifacts: make(map[string]models.GeneratedArtifact),
		shares:    make(map[string]models.ShareRecord),
	}
}

func (m *MemoryStore) SaveArtifact(artifact models.GeneratedArtifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.artifacts[artifact.ID]; exists {
		return fmt.Errorf("artifact %s already exists", artifact.ID)
	}
	m.artifacts[artifact.ID] = artifact
	return nil
}

func (m *MemoryStore) GetArtifact(id string) (models.GeneratedArtifact, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	artifact, exists := m.artifacts[id]
	return artifact, exists
}

func (m *MemoryStore) ListArtifactsByOwner(ownerID string) ([]models.GeneratedArtifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var artifacts []models.GeneratedArtifact
	for _, a := range m.artifacts {
		if a.OwnerID == ownerID {
			artifacts = append(artifacts, a)
		}
	}
	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].CreatedAt.After(artifacts[j].CreatedAt)
	})
	return artifacts, nil
}

func (m *MemoryStore) SaveShare(share models.ShareRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := share.ReceiverID + "|" + share.ArtifactID
	if _, exists := m.shares[key]; exists {
		return nil
	}
	m.shares[key] = share
	return nil
}

// ShareCount reports the number of stored share rows. Test helper.
func (m *MemoryStore) ShareCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.shares)
}
