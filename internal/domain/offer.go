package domain

// PlatformRef identifies the source marketplace or store that produced a raw offer.
type PlatformRef struct {
	Name string `json:"name"`
}

// RawStoreOffer is a single per-product, per-source record as delivered by the
// ingestion collaborator. Price fields are deliberately untyped because the
// upstream feeds mix currency-prefixed strings and raw numbers; the normalizer
// is the only component allowed to interpret them.
type RawStoreOffer struct {
	Name       string      `json:"name"`
	Brand      string      `json:"brand"`
	Platform   PlatformRef `json:"platform"`
	MRP        any         `json:"mrp"`
	OfferPrice any         `json:"offer_price"`
	Quantity   string      `json:"quantity"`
	Available  bool        `json:"available"`
}

// UnknownStore is the sentinel label applied when a raw offer carries no platform name.
const UnknownStore = "Unknown Store"

// PriceObservation is a normalized offer. Price is always a finite
// non-negative number; records that fail normalization are dropped before
// this type is ever constructed.
type PriceObservation struct {
	Store       string  `json:"store"`
	Price       float64 `json:"price"`
	MRP         float64 `json:"mrp"`
	ProductName string  `json:"productName"`
	Brand       string  `json:"brand"`
	Quantity    string  `json:"quantity"`
	Available   bool    `json:"available"`
}

// ProductPriceRecord aggregates every observation for one logical product name.
type ProductPriceRecord struct {
	Name         string                        `json:"name"`
	Observations []PriceObservation            `json:"observations"`
	LowestPrice  float64                       `json:"lowestPrice"`
	HighestPrice float64                       `json:"highestPrice"`
	AveragePrice float64                       `json:"averagePrice"`
	ByStore      map[string][]PriceObservation `json:"byStore"`
}

// StoreStat is the per-store rollup maintained alongside aggregation.
// LowestPriceCount increments once per product in which the store ties for
// the minimum price, ties included.
type StoreStat struct {
	Name             string `json:"name"`
	ProductCount     int    `json:"productCount"`
	LowestPriceCount int    `json:"lowestPriceCount"`
}

// StoreSummary is one leaderboard row derived from StoreStat.
type StoreSummary struct {
	Name                  string  `json:"name"`
	ProductCount          int     `json:"productCount"`
	LowestPriceCount      int     `json:"lowestPriceCount"`
	LowestPricePercentage float64 `json:"lowestPricePercentage"`
}

// SavingsUnavailable is reported when the highest price is zero and a
// savings percentage cannot be computed.
const SavingsUnavailable = "N/A"

// BestStoreReport names the store(s) holding the lowest available price for a product.
type BestStoreReport struct {
	Product          string   `json:"product"`
	LowestPrice      float64  `json:"lowestPrice"`
	HighestPrice     float64  `json:"highestPrice"`
	BestStores       []string `json:"bestStores"`
	PotentialSavings string   `json:"potentialSavings"`
}
