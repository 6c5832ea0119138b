package risk

import "github.com/corefin/matchbook/pkg/engine/model"

// Rule is one admission check run against a submission before it reaches
// the book. A non-nil error rejects the order; nothing is inserted.
type Rule interface {
	Check(sub *model.Submission) error
}
