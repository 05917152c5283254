// Package codec converts sale records between the verbose upstream shape
// and the compact archived shape. Both directions are total: any input
// record produces an output record, with absent fields falling back to
// defaults rather than failing.
package codec

import (
	"bytes"
	"encoding/json"

	"donutsmp-market-api/internal/model"
)

const defaultCount = 1

// Encode compacts one upstream sale record. Field names shrink to their
// short archive keys, count defaults to 1 when the upstream omitted it, and
// optional detail (enchantment levels, trim, shulker contents) is only
// carried when present and non-empty.
func Encode(r model.SaleRecord) model.CompactRecord {
	item := model.CompactItem{
		ID:    r.Item.ID,
		Count: defaultCount,
	}
	if r.Item.Count != nil {
		item.Count = *r.Item.Count
	}
	if ench := r.Item.Enchantments; ench != nil {
		if len(ench.Levels) > 0 {
			item.Enchants = ench.Levels
		}
		if !emptyJSON(ench.Trim) {
			item.Trim = ench.Trim
		}
	}
	if len(r.Item.Contents) > 0 {
		item.Contents = r.Item.Contents
	}
	return model.CompactRecord{
		TS:     r.SoldAtMillis,
		Price:  r.Price,
		Item:   item,
		Seller: r.SellerName,
	}
}

// Decode expands one archived record back to the upstream shape. The
// enchantments struct is always materialized, even when empty, so decoded
// records carry the same keys the upstream would have sent.
func Decode(c model.CompactRecord) model.SaleRecord {
	count := c.Item.Count
	ench := &model.ItemEnchantments{}
	if len(c.Item.Enchants) > 0 {
		ench.Levels = c.Item.Enchants
	}
	if len(c.Item.Trim) > 0 {
		ench.Trim = c.Item.Trim
	}
	item := model.SaleItem{
		ID:           c.Item.ID,
		Count:        &count,
		Enchantments: ench,
	}
	if len(c.Item.Contents) > 0 {
		item.Contents = c.Item.Contents
	}
	return model.SaleRecord{
		SoldAtMillis: c.TS,
		Price:        c.Price,
		Item:         item,
		SellerName:   c.Seller,
	}
}

// EncodeAll compacts a batch, preserving order.
func EncodeAll(records []model.SaleRecord) []model.CompactRecord {
	out := make([]model.CompactRecord, 0, len(records))
	for _, r := range records {
		out = append(out, Encode(r))
	}
	return out
}

// DecodeAll expands a batch, preserving order. The result is never nil so
// an empty archive serializes as an empty array.
func DecodeAll(records []model.CompactRecord) []model.SaleRecord {
	out := make([]model.SaleRecord, 0, len(records))
	for _, r := range records {
		out = append(out, Decode(r))
	}
	return out
}

// emptyJSON reports whether a raw value carries no data worth archiving:
// absent, null, or an empty object, array, or string in any formatting.
// Values that do not parse count as data and pass through verbatim.
func emptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`""`)) {
		return true
	}
	switch trimmed[0] {
	case '{':
		var obj map[string]json.RawMessage
		return json.Unmarshal(trimmed, &obj) == nil && len(obj) == 0
	case '[':
		var arr []json.RawMessage
		return json.Unmarshal(trimmed, &arr) == nil && len(arr) == 0
	}
	return false
}
