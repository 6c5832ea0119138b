package book

// PricePolicy decides the execution price of a cross when both the bid and
// the ask qualify. The book stays policy-agnostic; callers pick a rule at
// construction time.
type PricePolicy func(bid, ask *Order) float64

// AskPricePolicy executes at the sell side's limit, so price improvement
// accrues to the buyer. This is the default.
func AskPricePolicy(_, ask *Order) float64 {
	return ask.Price
}

// BidPricePolicy executes at the buy side's limit.
func BidPricePolicy(bid, _ *Order) float64 {
	return bid.Price
}

// MidpointPolicy splits the spread between the two limits.
func MidpointPolicy(bid, ask *Order) float64 {
	return (bid.Price + ask.Price) / 2
}
