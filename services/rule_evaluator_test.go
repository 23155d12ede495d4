package services

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/resellerhub/resellerhub_backend/models"
)

type stubRuleSource struct {
	rules []models.AutoApprovalRule
	err   error
}

func (s *stubRuleSource) EnabledRules(ctx context.Context) ([]models.AutoApprovalRule, error) {
	return s.rules, s.err
}

func floatPtr(v float64) *float64 { return &v }

func makeRule(name string, priority int, maxAmount *float64, trustedOnly bool) models.AutoApprovalRule {
	return models.AutoApprovalRule{
		ID:                   primitive.NewObjectID(),
		Name:                 name,
		Enabled:              true,
		Priority:             priority,
		MaxAmount:            maxAmount,
		TrustedResellersOnly: trustedOnly,
	}
}

func TestEvaluateNoRules(t *testing.T) {
	evaluator := NewRuleEvaluator(&stubRuleSource{})

	result := evaluator.Evaluate(context.Background(), 100, false)
	if result.Matched {
		t.Fatal("expected no match with an empty rule set")
	}
}

func TestEvaluateMaxAmountBoundary(t *testing.T) {
	rule := makeRule("small amounts", 10, floatPtr(500), false)
	evaluator := NewRuleEvaluator(&stubRuleSource{rules: []models.AutoApprovalRule{rule}})

	cases := []struct {
		name    string
		amount  float64
		matched bool
	}{
		{"below limit", 499.99, true},
		{"exactly at limit", 500, true},
		{"just above limit", 500.01, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := evaluator.Evaluate(context.Background(), tc.amount, false)
			if result.Matched != tc.matched {
				t.Errorf("amount %v: matched = %v, want %v", tc.amount, result.Matched, tc.matched)
			}
		})
	}
}

func TestEvaluateNilMaxAmountIsUnlimited(t *testing.T) {
	rule := makeRule("any amount", 1, nil, false)
	evaluator := NewRuleEvaluator(&stubRuleSource{rules: []models.AutoApprovalRule{rule}})

	result := evaluator.Evaluate(context.Background(), 1_000_000, false)
	if !result.Matched {
		t.Fatal("rule without a max amount should match any amount")
	}
	if result.RuleID != rule.ID {
		t.Errorf("matched rule %s, want %s", result.RuleID.Hex(), rule.ID.Hex())
	}
}

func TestEvaluateHighestPriorityWins(t *testing.T) {
	low := makeRule("low priority", 1, nil, false)
	high := makeRule("high priority", 100, nil, false)
	mid := makeRule("mid priority", 50, nil, false)

	evaluator := NewRuleEvaluator(&stubRuleSource{
		rules: []models.AutoApprovalRule{low, high, mid},
	})

	result := evaluator.Evaluate(context.Background(), 100, false)
	if !result.Matched {
		t.Fatal("expected a match")
	}
	if result.RuleID != high.ID {
		t.Errorf("matched %q, want the highest priority rule", result.RuleName)
	}
}

func TestEvaluateHigherPriorityNonMatchingIsSkipped(t *testing.T) {
	strict := makeRule("strict", 100, floatPtr(50), false)
	loose := makeRule("loose", 1, floatPtr(1000), false)

	evaluator := NewRuleEvaluator(&stubRuleSource{
		rules: []models.AutoApprovalRule{strict, loose},
	})

	result := evaluator.Evaluate(context.Background(), 200, false)
	if !result.Matched {
		t.Fatal("expected the lower priority rule to match")
	}
	if result.RuleID != loose.ID {
		t.Errorf("matched %q, want %q", result.RuleName, loose.Name)
	}
}

func TestEvaluateEqualPriorityIsDeterministic(t *testing.T) {
	a := makeRule("rule a", 10, nil, false)
	b := makeRule("rule b", 10, nil, false)

	first := NewRuleEvaluator(&stubRuleSource{rules: []models.AutoApprovalRule{a, b}}).
		Evaluate(context.Background(), 100, false)
	second := NewRuleEvaluator(&stubRuleSource{rules: []models.AutoApprovalRule{b, a}}).
		Evaluate(context.Background(), 100, false)

	if first.RuleID != second.RuleID {
		t.Errorf("same rule set matched %s then %s depending on order", first.RuleID.Hex(), second.RuleID.Hex())
	}
}

func TestEvaluateDisabledRuleNeverMatches(t *testing.T) {
	rule := makeRule("disabled", 10, nil, false)
	rule.Enabled = false

	evaluator := NewRuleEvaluator(&stubRuleSource{rules: []models.AutoApprovalRule{rule}})

	if result := evaluator.Evaluate(context.Background(), 100, false); result.Matched {
		t.Fatal("disabled rule must not match")
	}
}

func TestEvaluateTrustedResellersOnly(t *testing.T) {
	rule := makeRule("trusted only", 10, nil, true)
	evaluator := NewRuleEvaluator(&stubRuleSource{rules: []models.AutoApprovalRule{rule}})

	if result := evaluator.Evaluate(context.Background(), 100, false); result.Matched {
		t.Error("trusted-only rule matched an untrusted reseller")
	}
	if result := evaluator.Evaluate(context.Background(), 100, true); !result.Matched {
		t.Error("trusted-only rule should match a trusted reseller")
	}
}

func TestEvaluateFailsClosedOnSourceError(t *testing.T) {
	evaluator := NewRuleEvaluator(&stubRuleSource{err: errors.New("connection refused")})

	if result := evaluator.Evaluate(context.Background(), 100, true); result.Matched {
		t.Fatal("evaluator must not match when the rule source is unavailable")
	}
}
