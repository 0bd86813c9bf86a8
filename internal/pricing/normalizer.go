package pricing

import (
	"math"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/quickbasket/api/internal/domain"
)

// currencyPrefixes lists the decorations observed on price strings in the
// ingestion feeds. Longer prefixes must come first.
var currencyPrefixes = []string{"₹", "Rs.", "Rs", "INR"}

// NormalizeOffer converts a raw offer into a price observation. It reports
// false when the offer lacks a product name or when neither the listed price
// nor the reference price is numeric; such records are dropped, never
// propagated.
func NormalizeOffer(raw domain.RawStoreOffer) (domain.PriceObservation, bool) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return domain.PriceObservation{}, false
	}

	price, priceOK := numericPrice(raw.OfferPrice)
	mrp, mrpOK := numericPrice(raw.MRP)
	if !priceOK {
		if !mrpOK {
			return domain.PriceObservation{}, false
		}
		price = mrp
	}
	// The reference price defaults to the chosen price when absent, so
	// mrp >= price is not guaranteed and callers must not infer a discount.
	if !mrpOK {
		mrp = price
	}

	store := strings.TrimSpace(raw.Platform.Name)
	if store == "" {
		store = domain.UnknownStore
	}

	return domain.PriceObservation{
		Store:       store,
		Price:       price,
		MRP:         mrp,
		ProductName: name,
		Brand:       strings.TrimSpace(raw.Brand),
		Quantity:    strings.TrimSpace(raw.Quantity),
		Available:   raw.Available,
	}, true
}

// NormalizeBatch normalizes a slice of raw offers, dropping rejects. A nil
// batch (the decoded form of a non-array payload) short-circuits to an empty
// result with a diagnostic instead of an error.
func NormalizeBatch(raws []domain.RawStoreOffer, logger *zap.Logger) []domain.PriceObservation {
	if logger == nil {
		logger = zap.NewNop()
	}
	if raws == nil {
		logger.Warn("normalize: batch input is not a list; yielding no observations")
		return []domain.PriceObservation{}
	}

	observations := make([]domain.PriceObservation, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		obs, ok := NormalizeOffer(raw)
		if !ok {
			dropped++
			continue
		}
		observations = append(observations, obs)
	}
	if dropped > 0 {
		logger.Debug("normalize: dropped malformed offers",
			zap.Int("dropped", dropped),
			zap.Int("kept", len(observations)),
		)
	}
	return observations
}

// numericPrice coerces the loosely typed price fields (raw numbers,
// currency-prefixed strings) into a finite non-negative float.
func numericPrice(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case string:
		trimmed := strings.TrimSpace(v)
		for _, prefix := range currencyPrefixes {
			trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
		}
		trimmed = strings.ReplaceAll(trimmed, ",", "")
		if trimmed == "" {
			return 0, false
		}
		value = trimmed
	}

	price, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, false
	}
	return price, true
}
