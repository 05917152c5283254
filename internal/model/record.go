package model

import "encoding/json"

// SaleRecord represents one auction sale in the verbose shape the upstream
// API reports it: full field names, nested item detail.
type SaleRecord struct {
	SoldAtMillis int64    `json:"soldAtMillis"`
	Price        float64  `json:"price"`
	Item         SaleItem `json:"item"`
	SellerName   string   `json:"sellerName"`
}

// SaleItem carries the item detail of a sale. Count is a pointer because the
// upstream omits it for single items; a missing count means 1.
type SaleItem struct {
	ID           string            `json:"id"`
	Count        *int              `json:"count,omitempty"`
	Enchantments *ItemEnchantments `json:"enchantments,omitempty"`
	Contents     []json.RawMessage `json:"contents,omitempty"`
}

// ItemEnchantments groups enchantment levels and armor trim the way the
// upstream nests them under item.enchantments. Trim is kept opaque; only
// Levels has a known schema.
type ItemEnchantments struct {
	Levels map[string]int  `json:"levels,omitempty"`
	Trim   json.RawMessage `json:"trim,omitempty"`
}

// CompactRecord is the archived shape of a sale: short keys, defaults and
// empty optionals stripped. This is the exact on-disk record layout.
type CompactRecord struct {
	TS     int64       `json:"ts"`
	Price  float64     `json:"p"`
	Item   CompactItem `json:"i"`
	Seller string      `json:"s"`
}

// CompactItem is the archived item detail. Count is always present so a
// record never needs re-expansion to answer quantity queries.
type CompactItem struct {
	ID       string            `json:"id"`
	Count    int               `json:"c"`
	Enchants map[string]int    `json:"e,omitempty"`
	Trim     json.RawMessage   `json:"t,omitempty"`
	Contents []json.RawMessage `json:"cont,omitempty"`
}

// IdentityKey is the comparable identity of one sale observation. Two
// records with the same key describe the same sale regardless of how much
// item detail each carries.
type IdentityKey struct {
	TS     int64
	Price  float64
	ItemID string
	Seller string
}

// IdentityKey returns the dedup identity of the record.
func (r CompactRecord) IdentityKey() IdentityKey {
	return IdentityKey{
		TS:     r.TS,
		Price:  r.Price,
		ItemID: r.Item.ID,
		Seller: r.Seller,
	}
}
