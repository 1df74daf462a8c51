// Package catalog holds the per-deployment collection of automatic rate
// limit rules. A catalog is assembled once at startup and immutable
// afterwards.
package catalog

import (
	"fmt"
	"time"

	"github.com/quillboard/admission/internal/engine"
)

// Catalog is an ordered list of rules. Order breaks ties between equally
// strict rules.
type Catalog struct {
	rules []engine.Rule
}

// New builds a catalog from the given rules, preserving their order.
func New(rules []engine.Rule) Catalog {
	return Catalog{rules: append([]engine.Rule(nil), rules...)}
}

// Rules returns all rules in catalog order.
func (c Catalog) Rules() []engine.Rule {
	return append([]engine.Rule(nil), c.rules...)
}

// ForAction returns the rules for one action type, in catalog order.
func (c Catalog) ForAction(action engine.ActionType) []engine.Rule {
	var matched []engine.Rule
	for _, rule := range c.rules {
		if rule.ActionType == action {
			matched = append(matched, rule)
		}
	}
	return matched
}

// Validate checks every rule definition, failing on the first invalid one.
func (c Catalog) Validate() error {
	for i, rule := range c.rules {
		if errValidate := rule.Validate(); errValidate != nil {
			return fmt.Errorf("catalog rule %d: %w", i, errValidate)
		}
	}
	return nil
}

// MaxLookback returns the longest quota timeframe in the catalog. Callers
// use it to bound how far back they fetch a user's own action history.
func (c Catalog) MaxLookback() time.Duration {
	var max time.Duration
	for _, rule := range c.rules {
		timeframe, errTimeframe := rule.Timeframe()
		if errTimeframe != nil {
			continue
		}
		if timeframe > max {
			max = timeframe
		}
	}
	return max
}
