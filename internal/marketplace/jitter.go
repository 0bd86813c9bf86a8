package marketplace

import "math/rand"

// PriceJitter returns a price transform that shifts each price by a uniform
// integer amount in [-amplitude, +amplitude], floored at 1 so a listing never
// becomes free or negative. A nil rng uses the shared package source.
func PriceJitter(amplitude int, rng *rand.Rand) func(price float64) float64 {
	if amplitude <= 0 {
		return func(price float64) float64 { return price }
	}
	intn := rand.Intn
	if rng != nil {
		intn = rng.Intn
	}
	return func(price float64) float64 {
		shifted := price + float64(intn(2*amplitude+1)-amplitude)
		if shifted < 1 {
			return 1
		}
		return shifted
	}
}
