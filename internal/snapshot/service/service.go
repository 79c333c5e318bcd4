// Package service implements snapshot ingestion and retrieval: raw CRM
// payloads are normalized into canonical entities, stored per organization,
// and reassembled into a domain snapshot for analysis.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"revenue_radar_backend/internal/engine/domain"
	"revenue_radar_backend/internal/engine/normalize"
	"revenue_radar_backend/internal/events"
	"revenue_radar_backend/internal/snapshot/repository"
	"revenue_radar_backend/platform/apperr"
	"revenue_radar_backend/platform/logger"
	"revenue_radar_backend/platform/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Ingest modes.
const (
	ModeReplace = "replace"
	ModeAppend  = "append"
)

// IngestResult reports what happened to one webhook payload.
type IngestResult struct {
	Provider string `json:"provider"`
	Mode     string `json:"mode"`
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
}

// Repo is the storage surface the service needs.
type Repo interface {
	ReplaceEntity(ctx context.Context, orgID uuid.UUID, entity string, records []repository.Record) error
	AppendEntity(ctx context.Context, orgID uuid.UUID, entity string, records []repository.Record) error
	LoadEntity(ctx context.Context, orgID uuid.UUID, entity string) ([][]byte, error)
	CountRecords(ctx context.Context, orgID uuid.UUID) (map[string]int, error)
	ListOrganizations(ctx context.Context) ([]uuid.UUID, error)
	CreateAPIKey(ctx context.Context, orgID uuid.UUID, name, keyHash string) (repository.APIKey, error)
	FindOrgByKeyHash(ctx context.Context, keyHash string) (uuid.UUID, error)
}

type Service struct {
	repo    Repo
	bus     events.Bus
	metrics *metrics.Metrics
	log     *logger.Logger
}

func New(repo Repo, bus events.Bus, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, metrics: m, log: log}
}

// Ingest normalizes and stores one raw snapshot payload. Replace mode swaps
// the org's stored set per entity; append mode upserts on top of it. Records
// without an id are rejected but never abort the rest of the payload.
func (s *Service) Ingest(ctx context.Context, orgID uuid.UUID, mode string, raw normalize.RawSnapshot) (IngestResult, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = ModeReplace
	}
	if mode != ModeReplace && mode != ModeAppend {
		return IngestResult{}, apperr.Validation("mode must be replace or append")
	}

	snap, rejected := normalize.Snapshot(raw, time.Now().UTC())

	store := s.repo.ReplaceEntity
	if mode == ModeAppend {
		store = s.repo.AppendEntity
	}

	entities := []struct {
		name    string
		records []repository.Record
	}{
		{repository.EntityLead, marshalLeads(snap.Leads)},
		{repository.EntityOpportunity, marshalOpportunities(snap.Opportunities)},
		{repository.EntityActivity, marshalActivities(snap.Activities)},
		{repository.EntityRep, marshalReps(snap.Reps)},
	}

	accepted := 0
	for _, e := range entities {
		if mode == ModeAppend && len(e.records) == 0 {
			continue
		}
		if err := store(ctx, orgID, e.name, e.records); err != nil {
			return IngestResult{}, fmt.Errorf("store %s: %w", e.name, err)
		}
		accepted += len(e.records)
		if s.metrics != nil {
			s.metrics.RecordsIngested.WithLabelValues(e.name).Add(float64(len(e.records)))
		}
	}

	result := IngestResult{Provider: raw.Provider, Mode: mode, Accepted: accepted, Rejected: rejected}
	s.log.IngestEvent(raw.Provider, mode, accepted, rejected)

	if s.bus != nil {
		s.bus.Publish(ctx, events.SnapshotIngested{
			BaseEvent: events.NewBaseEvent(),
			OrgID:     orgID,
			Provider:  raw.Provider,
			Mode:      mode,
			Accepted:  accepted,
			Rejected:  rejected,
		})
	}
	return result, nil
}

// Load reassembles the org's stored records into a domain snapshot. The four
// entity reads run concurrently.
func (s *Service) Load(ctx context.Context, orgID uuid.UUID) (domain.Snapshot, error) {
	var snap domain.Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loadInto(gctx, s.repo, orgID, repository.EntityLead, &snap.Leads)
	})
	g.Go(func() error {
		return loadInto(gctx, s.repo, orgID, repository.EntityOpportunity, &snap.Opportunities)
	})
	g.Go(func() error {
		return loadInto(gctx, s.repo, orgID, repository.EntityActivity, &snap.Activities)
	})
	g.Go(func() error {
		return loadInto(gctx, s.repo, orgID, repository.EntityRep, &snap.Reps)
	})
	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

// Counts returns per-entity stored record counts for the org.
func (s *Service) Counts(ctx context.Context, orgID uuid.UUID) (map[string]int, error) {
	return s.repo.CountRecords(ctx, orgID)
}

// ListOrganizations returns every organization with stored snapshot data.
func (s *Service) ListOrganizations(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.ListOrganizations(ctx)
}

// CreateKey mints a new ingestion API key. The plaintext key is returned
// exactly once; only its hash is stored.
func (s *Service) CreateKey(ctx context.Context, orgID uuid.UUID, name string) (plaintext string, key repository.APIKey, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", repository.APIKey{}, fmt.Errorf("generate api key: %w", err)
	}
	plaintext = "rrk_" + hex.EncodeToString(buf)

	key, err = s.repo.CreateAPIKey(ctx, orgID, name, HashKey(plaintext))
	if err != nil {
		return "", repository.APIKey{}, err
	}
	return plaintext, key, nil
}

// ResolveKey maps a presented plaintext key to its organization.
func (s *Service) ResolveKey(ctx context.Context, plaintext string) (uuid.UUID, error) {
	if plaintext == "" {
		return uuid.UUID{}, apperr.Unauthorized("missing api key")
	}
	orgID, err := s.repo.FindOrgByKeyHash(ctx, HashKey(plaintext))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return uuid.UUID{}, apperr.Unauthorized("invalid api key")
		}
		return uuid.UUID{}, err
	}
	return orgID, nil
}

// HashKey hashes an API key for storage and lookup.
func HashKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

func loadInto[T any](ctx context.Context, repo Repo, orgID uuid.UUID, entity string, out *[]T) error {
	payloads, err := repo.LoadEntity(ctx, orgID, entity)
	if err != nil {
		return err
	}
	items := make([]T, 0, len(payloads))
	for _, p := range payloads {
		var item T
		if err := json.Unmarshal(p, &item); err != nil {
			return fmt.Errorf("decode stored %s: %w", entity, err)
		}
		items = append(items, item)
	}
	*out = items
	return nil
}

func marshalLeads(leads []domain.Lead) []repository.Record {
	out := make([]repository.Record, 0, len(leads))
	for _, l := range leads {
		out = append(out, mustRecord(l.ID, l))
	}
	return out
}

func marshalOpportunities(deals []domain.Opportunity) []repository.Record {
	out := make([]repository.Record, 0, len(deals))
	for _, d := range deals {
		out = append(out, mustRecord(d.ID, d))
	}
	return out
}

func marshalActivities(acts []domain.Activity) []repository.Record {
	out := make([]repository.Record, 0, len(acts))
	for _, a := range acts {
		out = append(out, mustRecord(a.ID, a))
	}
	return out
}

func marshalReps(reps []domain.Rep) []repository.Record {
	out := make([]repository.Record, 0, len(reps))
	for _, r := range reps {
		out = append(out, mustRecord(r.ID, r))
	}
	return out
}

// mustRecord marshals a canonical entity. These are plain structs, so a
// marshal failure is a programming error, not input data.
func mustRecord(id string, v interface{}) repository.Record {
	payload, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal canonical record %s: %v", id, err))
	}
	return repository.Record{ID: id, Payload: payload}
}
