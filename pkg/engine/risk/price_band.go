package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/corefin/matchbook/pkg/engine/model"
)

type PriceBand struct {
	Floor decimal.Decimal
	Ceil  decimal.Decimal
}

// PriceBandRule rejects submissions priced outside the per-symbol band.
// Symbols without a band pass unchecked.
type PriceBandRule struct {
	Bands map[string]PriceBand
}

func NewPriceBandRule(bands map[string]PriceBand) *PriceBandRule {
	return &PriceBandRule{Bands: bands}
}

func (r *PriceBandRule) Check(sub *model.Submission) error {
	band, ok := r.Bands[sub.Symbol]
	if !ok {
		return nil
	}
	if sub.Price.LessThan(band.Floor) || sub.Price.GreaterThan(band.Ceil) {
		return fmt.Errorf("price %s outside band [%s, %s]", sub.Price, band.Floor, band.Ceil)
	}
	return nil
}
