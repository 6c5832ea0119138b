package risk

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/corefin/matchbook/pkg/engine/model"
)

type tickSizeTier struct {
	MaxPrice decimal.Decimal `json:"maxPrice"` // zero = no upper bound
	Step     decimal.Decimal `json:"step"`
}

// TickSizeRule rejects submissions whose price does not sit on the tick
// grid configured for the symbol. Symbols without config pass unchecked.
type TickSizeRule struct {
	Config map[string][]tickSizeTier
}

func NewTickSizeRuleFromFile(path string) (*TickSizeRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg map[string][]tickSizeTier
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &TickSizeRule{Config: cfg}, nil
}

func (r *TickSizeRule) Check(sub *model.Submission) error {
	tiers, ok := r.Config[sub.Symbol]
	if !ok {
		return nil
	}

	for _, tier := range tiers {
		if tier.MaxPrice.IsZero() || sub.Price.LessThanOrEqual(tier.MaxPrice) {
			if !sub.Price.Mod(tier.Step).IsZero() {
				return fmt.Errorf("price %s not a multiple of tick %s", sub.Price, tier.Step)
			}
			return nil
		}
	}

	return nil
}
