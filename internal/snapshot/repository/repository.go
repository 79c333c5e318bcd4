// Package repository persists canonical CRM snapshot records and the API
// keys that authorize webhook ingestion.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"revenue_radar_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entity names for stored records.
const (
	EntityLead        = "lead"
	EntityOpportunity = "opportunity"
	EntityActivity    = "activity"
	EntityRep         = "rep"
)

// Record is one canonical record ready for storage.
type Record struct {
	ID      string
	Payload []byte
}

// APIKey is the database model for a webhook ingestion key.
type APIKey struct {
	ID             uuid.UUID `db:"id"`
	OrganizationID uuid.UUID `db:"organization_id"`
	Name           string    `db:"name"`
	KeyHash        string    `db:"key_hash"`
	CreatedAt      time.Time `db:"created_at"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ReplaceEntity swaps out all stored records of one entity for the org in a
// single transaction, so readers never observe a half-replaced snapshot.
func (r *Repository) ReplaceEntity(ctx context.Context, orgID uuid.UUID, entity string, records []Record) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", entity, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM crm_records WHERE organization_id = $1 AND entity = $2`,
		orgID, entity,
	); err != nil {
		return fmt.Errorf("clear %s records: %w", entity, err)
	}

	if err := upsertRecords(ctx, tx, orgID, entity, records); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// AppendEntity upserts records without touching the rest of the stored set.
func (r *Repository) AppendEntity(ctx context.Context, orgID uuid.UUID, entity string, records []Record) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append %s: %w", entity, err)
	}
	defer tx.Rollback(ctx)

	if err := upsertRecords(ctx, tx, orgID, entity, records); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func upsertRecords(ctx context.Context, tx pgx.Tx, orgID uuid.UUID, entity string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(
			`INSERT INTO crm_records (organization_id, entity, record_id, payload, updated_at)
			 VALUES ($1, $2, $3, $4, now())
			 ON CONFLICT (organization_id, entity, record_id)
			 DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
			orgID, entity, rec.ID, rec.Payload,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert %s record: %w", entity, err)
		}
	}
	return nil
}

// LoadEntity returns the stored payloads of one entity for the org.
func (r *Repository) LoadEntity(ctx context.Context, orgID uuid.UUID, entity string) ([][]byte, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT payload FROM crm_records
		 WHERE organization_id = $1 AND entity = $2
		 ORDER BY record_id`,
		orgID, entity,
	)
	if err != nil {
		return nil, fmt.Errorf("load %s records: %w", entity, err)
	}
	defer rows.Close()

	var payloads [][]byte
	for rows.Next() {
		var p []byte
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan %s record: %w", entity, err)
		}
		payloads = append(payloads, p)
	}
	return payloads, rows.Err()
}

// CountRecords returns per-entity record counts for the org.
func (r *Repository) CountRecords(ctx context.Context, orgID uuid.UUID) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT entity, count(*) FROM crm_records
		 WHERE organization_id = $1 GROUP BY entity`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var entity string
		var n int
		if err := rows.Scan(&entity, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[entity] = n
	}
	return counts, rows.Err()
}

// ListOrganizations returns every organization with stored records.
func (r *Repository) ListOrganizations(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT organization_id FROM crm_records ORDER BY organization_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgIDs = append(orgIDs, id)
	}
	return orgIDs, rows.Err()
}

// CreateAPIKey stores a new ingestion key hash for the org.
func (r *Repository) CreateAPIKey(ctx context.Context, orgID uuid.UUID, name, keyHash string) (APIKey, error) {
	var key APIKey
	err := r.pool.QueryRow(ctx,
		`INSERT INTO ingest_api_keys (id, organization_id, name, key_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, organization_id, name, key_hash, created_at`,
		uuid.New(), orgID, name, keyHash,
	).Scan(&key.ID, &key.OrganizationID, &key.Name, &key.KeyHash, &key.CreatedAt)
	if err != nil {
		return APIKey{}, fmt.Errorf("create api key: %w", err)
	}
	return key, nil
}

// FindOrgByKeyHash resolves an ingestion key hash to its organization.
func (r *Repository) FindOrgByKeyHash(ctx context.Context, keyHash string) (uuid.UUID, error) {
	var orgID uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT organization_id FROM ingest_api_keys WHERE key_hash = $1`,
		keyHash,
	).Scan(&orgID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.UUID{}, apperr.NotFound("api key not found")
	}
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("find api key: %w", err)
	}
	return orgID, nil
}
