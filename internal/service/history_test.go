package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"donutsmp-market-api/internal/model"
	"donutsmp-market-api/internal/repository"
)

func newTestHistory(t *testing.T, cfg CompactionConfig) (*HistoryService, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "market_history.json")
	repo, err := repository.NewFileArchiveRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return NewHistoryService(repo, cfg), path
}

func canonicalSale(ts int64, price float64, itemID, seller string) model.SaleRecord {
	return model.SaleRecord{
		SoldAtMillis: ts,
		Price:        price,
		Item:         model.SaleItem{ID: itemID},
		SellerName:   seller,
	}
}

func TestHistoryReadAllMissingArchive(t *testing.T) {
	svc, _ := newTestHistory(t, DefaultCompactionConfig())

	records, err := svc.ReadAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, records)
	require.Empty(t, records)
}

func TestHistoryAppendMergePersists(t *testing.T) {
	svc, _ := newTestHistory(t, DefaultCompactionConfig())
	ctx := context.Background()
	base := time.Now().UnixMilli()

	res, err := svc.AppendMerge(ctx, []model.SaleRecord{
		canonicalSale(base-2000, 10, "minecraft:diamond", "Steve"),
		canonicalSale(base-1000, 20, "minecraft:emerald", "Alex"),
	})
	require.NoError(t, err)
	require.Equal(t, MergeResult{PersistedCount: 2, PreviousTotal: 0}, res)

	records, err := svc.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "minecraft:diamond", records[0].Item.ID)
	require.NotNil(t, records[0].Item.Enchantments)
	require.NotNil(t, records[0].Item.Count)
	require.Equal(t, 1, *records[0].Item.Count)
}

func TestHistoryAppendMergeDedups(t *testing.T) {
	svc, _ := newTestHistory(t, DefaultCompactionConfig())
	ctx := context.Background()
	sale := canonicalSale(time.Now().UnixMilli()-1000, 10, "minecraft:diamond", "Steve")

	first, err := svc.AppendMerge(ctx, []model.SaleRecord{sale})
	require.NoError(t, err)
	require.Equal(t, 1, first.PersistedCount)

	second, err := svc.AppendMerge(ctx, []model.SaleRecord{sale})
	require.NoError(t, err)
	require.Equal(t, MergeResult{PersistedCount: 1, PreviousTotal: 1}, second)
}

func TestHistoryAppendMergeNewRecordWins(t *testing.T) {
	svc, _ := newTestHistory(t, DefaultCompactionConfig())
	ctx := context.Background()
	ts := time.Now().UnixMilli() - 1000

	stale := canonicalSale(ts, 10, "minecraft:netherite_sword", "Steve")
	_, err := svc.AppendMerge(ctx, []model.SaleRecord{stale})
	require.NoError(t, err)

	fresh := stale
	fresh.Item.Enchantments = &model.ItemEnchantments{Levels: map[string]int{"sharpness": 5}}
	res, err := svc.AppendMerge(ctx, []model.SaleRecord{fresh})
	require.NoError(t, err)
	require.Equal(t, 1, res.PersistedCount)

	records, err := svc.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, map[string]int{"sharpness": 5}, records[0].Item.Enchantments.Levels)
}

func TestHistoryAppendMergeEmptyBatch(t *testing.T) {
	svc, _ := newTestHistory(t, DefaultCompactionConfig())
	ctx := context.Background()

	_, err := svc.AppendMerge(ctx, []model.SaleRecord{
		canonicalSale(time.Now().UnixMilli()-1000, 10, "minecraft:diamond", "Steve"),
	})
	require.NoError(t, err)

	res, err := svc.AppendMerge(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, res.PreviousTotal, res.PersistedCount)
	require.Equal(t, 1, res.PersistedCount)
}

func TestHistoryAppendMergeHealsCorruptArchive(t *testing.T) {
	svc, path := newTestHistory(t, DefaultCompactionConfig())
	ctx := context.Background()
	require.NoError(t, os.WriteFile(path, []byte(`{"broken":`), 0o644))

	res, err := svc.AppendMerge(ctx, []model.SaleRecord{
		canonicalSale(time.Now().UnixMilli()-1000, 10, "minecraft:diamond", "Steve"),
	})
	require.NoError(t, err)
	require.Equal(t, MergeResult{PersistedCount: 1, PreviousTotal: 0}, res)

	records, err := svc.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestHistoryReadAllSurfacesCorruptArchive(t *testing.T) {
	svc, path := newTestHistory(t, DefaultCompactionConfig())
	require.NoError(t, os.WriteFile(path, []byte(`not json at all`), 0o644))

	_, err := svc.ReadAll(context.Background())
	require.ErrorIs(t, err, ErrCorruptArchive)
}

func TestHistoryCompactSurfacesCorruptArchive(t *testing.T) {
	svc, path := newTestHistory(t, DefaultCompactionConfig())
	require.NoError(t, os.WriteFile(path, []byte(`[{"ts":`), 0o644))

	_, err := svc.Compact(context.Background())
	require.ErrorIs(t, err, ErrCorruptArchive)
}

func TestHistoryCompactRemovesThenHoldsSteady(t *testing.T) {
	svc, path := newTestHistory(t, DefaultCompactionConfig())
	ctx := context.Background()
	base := time.Now().UnixMilli()

	// Seed the file directly with a duplicate and an expired record so
	// Compact has real work to do.
	seed := `[
		{"ts":1000,"p":5,"i":{"id":"minecraft:ancient","c":1},"s":"Steve"},
		{"ts":` + formatMillis(base-2000) + `,"p":10,"i":{"id":"minecraft:diamond","c":1},"s":"Steve"},
		{"ts":` + formatMillis(base-2000) + `,"p":10,"i":{"id":"minecraft:diamond","c":1},"s":"Steve"},
		{"ts":` + formatMillis(base-1000) + `,"p":20,"i":{"id":"minecraft:emerald","c":1},"s":"Alex"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	res, err := svc.Compact(ctx)
	require.NoError(t, err)
	require.Equal(t, CompactResult{Before: 4, After: 2, Removed: 2}, res)

	again, err := svc.Compact(ctx)
	require.NoError(t, err)
	require.Equal(t, CompactResult{Before: 2, After: 2, Removed: 0}, again)
}

func TestHistoryOverwriteReplacesArchive(t *testing.T) {
	svc, path := newTestHistory(t, DefaultCompactionConfig())
	ctx := context.Background()
	base := time.Now().UnixMilli()

	_, err := svc.AppendMerge(ctx, []model.SaleRecord{
		canonicalSale(base-3000, 10, "minecraft:diamond", "Steve"),
		canonicalSale(base-2000, 20, "minecraft:emerald", "Alex"),
	})
	require.NoError(t, err)

	res, err := svc.Overwrite(ctx, []model.SaleRecord{
		canonicalSale(base-1000, 30, "minecraft:gold_ingot", "Herobrine"),
	})
	require.NoError(t, err)
	require.Equal(t, OverwriteResult{PersistedCount: 1}, res)

	records, err := svc.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "minecraft:gold_ingot", records[0].Item.ID)

	empty, err := svc.Overwrite(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, OverwriteResult{PersistedCount: 0}, empty)

	payload, err := os.ReadFile(path)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(payload))
}

func TestHistoryAppendMergeAppliesBounds(t *testing.T) {
	svc, _ := newTestHistory(t, CompactionConfig{MaxRecords: 2, RetentionDays: 14})
	ctx := context.Background()
	base := time.Now().UnixMilli()

	res, err := svc.AppendMerge(ctx, []model.SaleRecord{
		canonicalSale(base-3000, 10, "minecraft:a", "s"),
		canonicalSale(base-2000, 20, "minecraft:b", "s"),
		canonicalSale(base-1000, 30, "minecraft:c", "s"),
	})
	require.NoError(t, err)
	require.Equal(t, 2, res.PersistedCount)

	records, err := svc.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "minecraft:b", records[0].Item.ID)
	require.Equal(t, "minecraft:c", records[1].Item.ID)
}

func TestHistoryIOErrorPropagates(t *testing.T) {
	wantErr := errors.New("disk on fire")
	svc := NewHistoryService(&stubArchiveRepo{loadErr: wantErr}, DefaultCompactionConfig())
	ctx := context.Background()

	_, err := svc.ReadAll(ctx)
	require.ErrorIs(t, err, wantErr)

	// An unreadable archive must not be confused with a corrupt one: the
	// merge path heals corruption but propagates I/O failures.
	_, err = svc.AppendMerge(ctx, nil)
	require.ErrorIs(t, err, wantErr)

	_, err = svc.Compact(ctx)
	require.ErrorIs(t, err, wantErr)
}

func TestHistoryStoreErrorPropagates(t *testing.T) {
	wantErr := errors.New("no space left")
	svc := NewHistoryService(&stubArchiveRepo{storeErr: wantErr}, DefaultCompactionConfig())

	_, err := svc.Overwrite(context.Background(), nil)
	require.ErrorIs(t, err, wantErr)
}

func formatMillis(ms int64) string {
	return strconv.FormatInt(ms, 10)
}

type stubArchiveRepo struct {
	payload  []byte
	loadErr  error
	storeErr error
}

func (s *stubArchiveRepo) Load(ctx context.Context) ([]byte, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.payload, nil
}

func (s *stubArchiveRepo) Store(ctx context.Context, payload []byte) error {
	if s.storeErr != nil {
		return s.storeErr
	}
	s.payload = payload
	return nil
}

func (s *stubArchiveRepo) Close() error { return nil }
