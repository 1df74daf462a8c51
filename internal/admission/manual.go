package admission

import (
	"fmt"

	"github.com/quillboard/admission/internal/engine"
	"github.com/quillboard/admission/internal/models"
)

// manualLimitMessage is shown for moderator-assigned limits.
const manualLimitMessage = "A moderator has rate limited you."

// PriorityClassModerator tags rules compiled from manual limits.
const PriorityClassModerator = "moderator"

// CompileManualRules converts moderator-assigned limits into threshold-free
// rules appended after the automatic catalog. Manual comment limits never
// apply on the user's own posts, matching moderator intent.
func CompileManualRules(action engine.ActionType, limits []models.ManualRateLimit) ([]engine.Rule, error) {
	var rules []engine.Rule
	for _, limit := range limits {
		rule := engine.Rule{
			ActionType:        action,
			ItemsPerTimeframe: limit.ActionsPerInterval,
			TimeframeLength:   limit.IntervalLength,
			TimeframeUnit:     engine.TimeframeUnit(limit.IntervalUnit),
			PriorityClass:     PriorityClassModerator,
			Message:           manualLimitMessage,
		}
		if errValidate := rule.Validate(); errValidate != nil {
			return nil, fmt.Errorf("manual limit %d: %w", limit.ID, errValidate)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
