package domain

// DistanceTier buckets partner stores by delivery distance; the tier decides
// the delivery fee surcharge.
type DistanceTier string

const (
	// DistancePrimary is the closest partner store; no surcharge.
	DistancePrimary DistanceTier = "primary"
	// DistanceMedium adds a moderate delivery surcharge.
	DistanceMedium DistanceTier = "medium"
	// DistanceFar adds the highest delivery surcharge.
	DistanceFar DistanceTier = "far"
)

// Store is a local partner store items can be delivered from. External
// comparison marketplaces are never represented by this type.
type Store struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Distance DistanceTier `json:"distance"`
}

// Product is a storefront catalog entry with its per-store offers.
type Product struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Brand        string        `json:"brand"`
	Category     string        `json:"category"`
	Quantity     string        `json:"quantity"`
	StoreOptions []StoreOption `json:"storeOptions"`
}

// StoreOption is one partner store's listing for a product.
type StoreOption struct {
	StoreID   string  `json:"storeId"`
	StoreName string  `json:"storeName"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// Option returns the store option for the given store id, if the product is listed there.
func (p Product) Option(storeID string) (StoreOption, bool) {
	for _, opt := range p.StoreOptions {
		if opt.StoreID == storeID {
			return opt, true
		}
	}
	return StoreOption{}, false
}
