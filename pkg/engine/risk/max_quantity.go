package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/corefin/matchbook/pkg/engine/model"
)

// MaxQuantityRule caps the size of a single submission.
type MaxQuantityRule struct {
	Max decimal.Decimal
}

func NewMaxQuantityRule(max decimal.Decimal) *MaxQuantityRule {
	return &MaxQuantityRule{Max: max}
}

func (r *MaxQuantityRule) Check(sub *model.Submission) error {
	if r.Max.IsPositive() && sub.Quantity.GreaterThan(r.Max) {
		return fmt.Errorf("quantity %s exceeds limit %s", sub.Quantity, r.Max)
	}
	return nil
}
