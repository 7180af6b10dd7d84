package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/models"
	_ "github.com/lib/pq"
)

// PostgresStore implements Store for PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// ConnectPostgres opens the database, verifies connectivity, and ensures
// the schema exists.
func ConnectPostgres(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	p := &PostgresStore{db: db}
	if err := p.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	log.Println("✅ Connected to PostgreSQL successfully")
	return p, nil
}

func (p *PostgresStore) createTables() error {
	query := `
    CREATE TABLE IF NOT EXISTS documents (
        id UUID PRIMARY KEY,
        owner_id VARCHAR(100) NOT NULL,
        original_name VARCHAR(255) NOT NULL,
        file_name VARCHAR(255) NOT NULL,
        artifact_url VARCHAR(500) NOT NULL,
        recipient_name VARCHAR(255) NOT NULL,
        recipient_prn VARCHAR(100) NOT NULL,
        created_at TIMESTAMPTZ NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id, created_at DESC);

    CREATE TABLE IF NOT EXISTS document_shares (
        sender_id VARCHAR(100) NOT NULL,
        receiver_id VARCHAR(100) NOT NULL,
        document_id UUID NOT NULL REFERENCES documents(id),
        shared_at TIMESTAMPTZ NOT NULL,
        seen BOOLEAN NOT NULL DEFAULT false,
        PRIMARY KEY (receiver_id, document_id)
    );

    CREATE INDEX IF NOT EXISTS idx_shares_receiver ON document_shares(receiver_id, shared_at DESC);
    `

	_, err := p.db.Exec(query)
	return err
}

// SaveArtifact inserts a metadata row. Rows are immutable: a duplicate id
// is an error, regeneration always gets a fresh id.
func (p *PostgresStore) SaveArtifact(artifact models.GeneratedArtifact) error {
	query := `
    INSERT INTO documents (id, owner_id, original_name, file_name, artifact_url, recipient_name, recipient_prn, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	_, err := p.db.Exec(query,
		artifact.ID,
		artifact.OwnerID,
		artifact.OriginalName,
		artifact.FileName,
		artifact.ArtifactURL,
		artifact.RecipientName,
		artifact.RecipientPRN,
		artifact.CreatedAt,
	)
	return err
}

func (p *PostgresStore) GetArtifact(id string) (models.GeneratedArtifact, bool) {
	query := `
    SELECT id, owner_id, original_name, file_name, artifact_url, recipient_name, recipient_prn, created_at
    FROM documents WHERE id = $1
    `

	var a models.GeneratedArtifact
	err := p.db.QueryRow(query, id).Scan(
		&a.ID,
		&a.OwnerID,
		&a.OriginalName,
		&a.FileName,
		&a.ArtifactURL,
		&a.RecipientName,
		&a.RecipientPRN,
		&a.CreatedAt,
	)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("[STORAGE] artifact lookup failed: %v", err)
		}
		return models.GeneratedArtifact{}, false
	}
	return a, true
}

func (p *PostgresStore) ListArtifactsByOwner(ownerID string) ([]models.GeneratedArtifact, error) {
	query := `
    SELECT id, owner_id, original_name, file_name, artifact_url, recipient_name, recipient_prn, created_at
    FROM documents WHERE owner_id = $1 ORDER BY created_at DESC
    `

	rows, err := p.db.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []models.GeneratedArtifact
	for rows.Next() {
		var a models.GeneratedArtifact
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.OriginalName, &a.FileName,
			&a.ArtifactURL, &a.RecipientName, &a.RecipientPRN, &a.CreatedAt); err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// SaveShare inserts a share row. The (receiver, document) primary key
// plus DO NOTHING makes re-sharing a silent success.
func (p *PostgresStore) SaveShare(share models.ShareRecord) error {
	query := `
    INSERT INTO document_shares (sender_id, receiver_id, document_id, shared_at, seen)
    VALUES ($1, $2, $3, $4, false)
    ON CONFLICT (receiver_id, document_id) DO NOTHING
    `

	_, err := p.db.Exec(query, share.SenderID, share.ReceiverID, share.ArtifactID, share.SharedAt)
	return err
}
