package risk

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corefin/matchbook/pkg/engine/model"
)

func submission(symbol string, price, qty string) *model.Submission {
	return &model.Submission{
		Account:      "acct-1",
		Symbol:       symbol,
		Side:         model.OrderSideBuy,
		Price:        decimal.RequireFromString(price),
		Quantity:     decimal.RequireFromString(qty),
		TransactTime: time.Now(),
	}
}

func TestMaxQuantityRule(t *testing.T) {
	rule := NewMaxQuantityRule(decimal.NewFromInt(100))

	assert.NoError(t, rule.Check(submission("AAPL", "10", "100")))
	assert.Error(t, rule.Check(submission("AAPL", "10", "101")))
}

func TestPriceBandRule(t *testing.T) {
	rule := NewPriceBandRule(map[string]PriceBand{
		"AAPL": {
			Floor: decimal.RequireFromString("50"),
			Ceil:  decimal.RequireFromString("150"),
		},
	})

	assert.NoError(t, rule.Check(submission("AAPL", "100", "1")))
	assert.Error(t, rule.Check(submission("AAPL", "49.99", "1")))
	assert.Error(t, rule.Check(submission("AAPL", "150.01", "1")))

	// symbols without a configured band are not constrained
	assert.NoError(t, rule.Check(submission("MSFT", "9999", "1")))
}

func TestTickSizeRule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ticksize.json")
	cfg := `{
		"AAPL": [
			{"maxPrice": "100", "step": "0.05"},
			{"maxPrice": "0", "step": "0.1"}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	rule, err := NewTickSizeRuleFromFile(path)
	require.NoError(t, err)

	// below the tier boundary the fine step applies
	assert.NoError(t, rule.Check(submission("AAPL", "99.95", "1")))
	assert.Error(t, rule.Check(submission("AAPL", "99.97", "1")))

	// exactly on the boundary still selects the first tier
	assert.NoError(t, rule.Check(submission("AAPL", "100", "1")))

	// above the boundary the unbounded tier's coarser step applies
	assert.NoError(t, rule.Check(submission("AAPL", "100.1", "1")))
	assert.Error(t, rule.Check(submission("AAPL", "100.05", "1")))

	// symbols without a tick table pass unchecked
	assert.NoError(t, rule.Check(submission("MSFT", "100.073", "1")))
}
