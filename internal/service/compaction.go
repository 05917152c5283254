package service

import (
	"sort"
	"time"

	"donutsmp-market-api/internal/model"
)

// Default archive bounds. Roughly two weeks of an active market fits well
// under the record cap, so the age limit is the one that usually bites.
const (
	DefaultMaxRecords    = 150000
	DefaultRetentionDays = 14
)

// CompactionConfig holds the archive bounds applied on every write.
type CompactionConfig struct {
	// MaxRecords caps the archive size; the oldest overflow is dropped.
	// Default: 150000
	MaxRecords int

	// RetentionDays is how far back sales are kept.
	// Default: 14 days
	RetentionDays int
}

// DefaultCompactionConfig returns the standard archive bounds.
func DefaultCompactionConfig() CompactionConfig {
	return CompactionConfig{
		MaxRecords:    DefaultMaxRecords,
		RetentionDays: DefaultRetentionDays,
	}
}

func (c CompactionConfig) normalized() CompactionConfig {
	if c.MaxRecords <= 0 {
		c.MaxRecords = DefaultMaxRecords
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = DefaultRetentionDays
	}
	return c
}

// CompactRecords reduces a batch of records to the canonical archive form:
// duplicates collapsed, records in ascending sale order, and both the size
// cap and the retention window enforced. The steps run in a fixed order --
// dedup, sort, size cap, then age cleanup -- and the input slice is not
// modified.
//
// Applying CompactRecords to its own output changes nothing.
func CompactRecords(records []model.CompactRecord, cfg CompactionConfig, now time.Time) []model.CompactRecord {
	cfg = cfg.normalized()

	// Collapse duplicate sales. The first instance of an identity wins, so
	// callers control conflict resolution by concatenation order.
	seen := make(map[model.IdentityKey]struct{}, len(records))
	out := make([]model.CompactRecord, 0, len(records))
	for _, r := range records {
		key := r.IdentityKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}

	// Oldest first. Stable so equal timestamps keep their arrival order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TS < out[j].TS
	})

	// Size cap before the age filter: keep the newest MaxRecords.
	if len(out) > cfg.MaxRecords {
		out = out[len(out)-cfg.MaxRecords:]
	}

	// Drop sales older than the retention window.
	cutoff := now.Add(-time.Duration(cfg.RetentionDays) * 24 * time.Hour).UnixMilli()
	kept := out[:0]
	for _, r := range out {
		if r.TS >= cutoff {
			kept = append(kept, r)
		}
	}
	return kept
}
