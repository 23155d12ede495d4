package services

import (
	"context"
	"log"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resellerhub/resellerhub_backend/models"
)

// RuleSource provides the enabled auto-approval rules
type RuleSource interface {
	EnabledRules(ctx context.Context) ([]models.AutoApprovalRule, error)
}

// MatchResult is the outcome of evaluating the rule set against a commission request
type MatchResult struct {
	Matched  bool
	RuleID   primitive.ObjectID
	RuleName string
}

// RuleEvaluator decides whether an enabled rule authorizes immediate approval
// of a commission. It is a pure decision function over the current rule set:
// no side effects beyond reading the rules.
type RuleEvaluator struct {
	rules RuleSource
}

func NewRuleEvaluator(rules RuleSource) *RuleEvaluator {
	return &RuleEvaluator{rules: rules}
}

// Evaluate returns the highest-priority enabled rule matching the amount and
// the reseller's trust flag, or a no-match result. Amount validity (> 0) is
// the caller's responsibility. If the rule source is unavailable the evaluator
// fails closed: auto-approval is an optimization, never a requirement, so the
// commission simply falls back to manual review.
func (e *RuleEvaluator) Evaluate(ctx context.Context, amount float64, resellerIsTrusted bool) MatchResult {
	rules, err := e.rules.EnabledRules(ctx)
	if err != nil {
		log.Printf("Failed to load auto-approval rules, falling back to manual review: %v", err)
		return MatchResult{}
	}

	// Highest priority first; equal priorities fall back to ID order so the
	// same rule set always yields the same match.
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].ID.Hex() < rules[j].ID.Hex()
	})

	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		if rule.MaxAmount != nil && amount > *rule.MaxAmount {
			continue
		}
		if rule.TrustedResellersOnly && !resellerIsTrusted {
			continue
		}
		return MatchResult{
			Matched:  true,
			RuleID:   rule.ID,
			RuleName: rule.Name,
		}
	}

	return MatchResult{}
}
