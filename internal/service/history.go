package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"donutsmp-market-api/internal/codec"
	"donutsmp-market-api/internal/model"
	"donutsmp-market-api/internal/repository"
)

// ErrCorruptArchive marks an archive whose stored payload cannot be parsed.
// Read paths surface it; the merge path heals it by rebuilding the archive
// from the incoming batch.
var ErrCorruptArchive = errors.New("archive payload is not valid JSON")

// MergeResult reports the outcome of an append-merge.
type MergeResult struct {
	PersistedCount int `json:"persisted_count"`
	PreviousTotal  int `json:"previous_total"`
}

// OverwriteResult reports the outcome of an overwrite.
type OverwriteResult struct {
	PersistedCount int `json:"persisted_count"`
}

// CompactResult reports the record counts around a compaction run.
type CompactResult struct {
	Before  int `json:"before"`
	After   int `json:"after"`
	Removed int `json:"removed"`
}

// HistoryService owns the market history archive: every operation loads the
// whole archive, transforms it in memory, and persists the full result. A
// mutex serializes operations so read-modify-write cycles never interleave.
type HistoryService struct {
	repo repository.ArchiveRepository
	cfg  CompactionConfig
	mu   sync.Mutex
}

// NewHistoryService creates a history service on top of an archive
// repository. Zero config fields fall back to the defaults.
func NewHistoryService(repo repository.ArchiveRepository, cfg CompactionConfig) *HistoryService {
	if repo == nil {
		return nil
	}
	return &HistoryService{
		repo: repo,
		cfg:  cfg.normalized(),
	}
}

// ReadAll returns every archived sale expanded to the verbose upstream
// shape, oldest first. The result is never nil.
func (s *HistoryService) ReadAll(ctx context.Context) ([]model.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadArchive(ctx)
	if err != nil {
		return nil, err
	}
	return codec.DecodeAll(records), nil
}

// AppendMerge folds a batch of new sales into the archive. New records win
// identity collisions against archived ones. A corrupt archive does not
// block ingestion: it is logged, treated as empty, and replaced by the
// merged result.
func (s *HistoryService) AppendMerge(ctx context.Context, newRecords []model.SaleRecord) (MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.loadArchive(ctx)
	if err != nil {
		if !errors.Is(err, ErrCorruptArchive) {
			return MergeResult{}, err
		}
		log.Printf("[HistoryService] Corrupt archive discarded during merge: %v", err)
		existing = nil
	}
	previous := len(existing)

	merged := append(codec.EncodeAll(newRecords), existing...)
	compacted := CompactRecords(merged, s.cfg, time.Now())

	if err := s.persist(ctx, compacted); err != nil {
		return MergeResult{}, err
	}
	return MergeResult{PersistedCount: len(compacted), PreviousTotal: previous}, nil
}

// Overwrite discards the archive and replaces it with the given batch,
// compacted. The previous contents are never read, so a corrupt archive
// cannot make Overwrite fail.
func (s *HistoryService) Overwrite(ctx context.Context, records []model.SaleRecord) (OverwriteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	compacted := CompactRecords(codec.EncodeAll(records), s.cfg, time.Now())

	if err := s.persist(ctx, compacted); err != nil {
		return OverwriteResult{}, err
	}
	return OverwriteResult{PersistedCount: len(compacted)}, nil
}

// Compact re-applies the archive bounds to the stored records and persists
// the result. Running it twice in a row removes nothing the second time.
// Unlike AppendMerge it surfaces a corrupt archive instead of healing it,
// since silently emptying the archive is not a maintenance operation.
func (s *HistoryService) Compact(ctx context.Context) (CompactResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.loadArchive(ctx)
	if err != nil {
		return CompactResult{}, err
	}
	before := len(existing)

	compacted := CompactRecords(existing, s.cfg, time.Now())

	if err := s.persist(ctx, compacted); err != nil {
		return CompactResult{}, err
	}
	return CompactResult{
		Before:  before,
		After:   len(compacted),
		Removed: before - len(compacted),
	}, nil
}

// loadArchive reads and parses the stored payload. A missing archive is an
// empty one; a present but unparsable payload is ErrCorruptArchive.
func (s *HistoryService) loadArchive(ctx context.Context) ([]model.CompactRecord, error) {
	payload, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load archive: %w", err)
	}
	if payload == nil {
		return nil, nil
	}

	var records []model.CompactRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	return records, nil
}

func (s *HistoryService) persist(ctx context.Context, records []model.CompactRecord) error {
	if records == nil {
		records = []model.CompactRecord{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode archive: %w", err)
	}
	if err := s.repo.Store(ctx, payload); err != nil {
		return fmt.Errorf("failed to store archive: %w", err)
	}
	return nil
}
