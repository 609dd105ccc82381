package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type RuleKind string

const (
	RuleRegionRestriction RuleKind = "region_restriction"
	RuleMinInsuredCount   RuleKind = "min_insured_count"
	RuleAgeRestriction    RuleKind = "age_restriction"
	RuleDuplicateCheck    RuleKind = "duplicate_application_check"
	RulePolicyLimitCheck  RuleKind = "policy_limit_check"
)

type Scope string

const (
	ScopeProduct Scope = "product"
	ScopeInsurer Scope = "insurer"
)

// Defaults fill numeric fields a rule leaves out.
type Defaults struct {
	MinInsuredCount        int
	MinAge                 int
	MaxAge                 int
	MaxPoliciesPerEmployee int
}

// Rule is one configured predicate. The concrete types below form a closed set.
type Rule interface {
	Kind() RuleKind
	Check(in *CheckInput) error
}

type RegionRestriction struct {
	DeniedRegions []string `json:"denied_regions"`
}

type MinInsuredCount struct {
	MinCount int `json:"min_count"`
}

type AgeRestriction struct {
	MinAge int `json:"min_age"`
	MaxAge int `json:"max_age"`
}

type DuplicateCheck struct {
	Scope Scope `json:"scope"`
}

type PolicyLimitCheck struct {
	MaxPoliciesPerEmployee int   `json:"max_policies_per_employee"`
	Scope                  Scope `json:"scope"`
}

func (RegionRestriction) Kind() RuleKind { return RuleRegionRestriction }
func (MinInsuredCount) Kind() RuleKind   { return RuleMinInsuredCount }
func (AgeRestriction) Kind() RuleKind    { return RuleAgeRestriction }
func (DuplicateCheck) Kind() RuleKind    { return RuleDuplicateCheck }
func (PolicyLimitCheck) Kind() RuleKind  { return RulePolicyLimitCheck }

// RuleSet holds the enabled rules in evaluation order.
type RuleSet struct {
	Rules []Rule
}

func (rs RuleSet) Empty() bool { return len(rs.Rules) == 0 }

func (rs RuleSet) Has(kind RuleKind) bool {
	for _, r := range rs.Rules {
		if r.Kind() == kind {
			return true
		}
	}
	return false
}

// MarshalJSON renders the effective rule set, defaults applied, keyed by rule kind.
func (rs RuleSet) MarshalJSON() ([]byte, error) {
	out := make(map[RuleKind]Rule, len(rs.Rules))
	for _, r := range rs.Rules {
		out[r.Kind()] = r
	}
	return json.Marshal(out)
}

type document struct {
	RegionRestriction *struct {
		Enabled       *bool    `json:"enabled"`
		DeniedRegions []string `json:"denied_regions"`
	} `json:"region_restriction"`
	MinInsuredCount *struct {
		Enabled  *bool `json:"enabled"`
		MinCount *int  `json:"min_count"`
	} `json:"min_insured_count"`
	AgeRestriction *struct {
		Enabled *bool `json:"enabled"`
		MinAge  *int  `json:"min_age"`
		MaxAge  *int  `json:"max_age"`
	} `json:"age_restriction"`
	DuplicateCheck *struct {
		Enabled *bool  `json:"enabled"`
		Scope   string `json:"scope"`
	} `json:"duplicate_application_check"`
	PolicyLimitCheck *struct {
		Enabled                *bool  `json:"enabled"`
		MaxPoliciesPerEmployee *int   `json:"max_policies_per_employee"`
		Scope                  string `json:"scope"`
	} `json:"policy_limit_check"`
}

// ParseRuleSet decodes the JSON blob stored on a channel config. A blank or
// null blob is an empty rule set. Unknown keys are ignored.
func ParseRuleSet(raw []byte, defaults Defaults) (RuleSet, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return RuleSet{}, nil
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return RuleSet{}, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	var rules []Rule
	if d := doc.RegionRestriction; d != nil && enabled(d.Enabled) {
		regions := make([]string, 0, len(d.DeniedRegions))
		for _, region := range d.DeniedRegions {
			if region = strings.TrimSpace(region); region != "" {
				regions = append(regions, region)
			}
		}
		rules = append(rules, RegionRestriction{DeniedRegions: regions})
	}
	if d := doc.MinInsuredCount; d != nil && enabled(d.Enabled) {
		rules = append(rules, MinInsuredCount{MinCount: intOr(d.MinCount, defaults.MinInsuredCount)})
	}
	if d := doc.AgeRestriction; d != nil && enabled(d.Enabled) {
		rules = append(rules, AgeRestriction{
			MinAge: intOr(d.MinAge, defaults.MinAge),
			MaxAge: intOr(d.MaxAge, defaults.MaxAge),
		})
	}
	if d := doc.DuplicateCheck; d != nil && enabled(d.Enabled) {
		scope, err := parseScope(d.Scope)
		if err != nil {
			return RuleSet{}, err
		}
		rules = append(rules, DuplicateCheck{Scope: scope})
	}
	if d := doc.PolicyLimitCheck; d != nil && enabled(d.Enabled) {
		scope, err := parseScope(d.Scope)
		if err != nil {
			return RuleSet{}, err
		}
		rules = append(rules, PolicyLimitCheck{
			MaxPoliciesPerEmployee: intOr(d.MaxPoliciesPerEmployee, defaults.MaxPoliciesPerEmployee),
			Scope:                  scope,
		})
	}

	rs := RuleSet{Rules: rules}
	if err := rs.Validate(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}

func (rs RuleSet) Validate() error {
	for _, r := range rs.Rules {
		switch rule := r.(type) {
		case MinInsuredCount:
			if rule.MinCount < 0 {
				return fmt.Errorf("%w: min_count cannot be negative", ErrInvalidRules)
			}
		case AgeRestriction:
			if rule.MinAge < 0 || rule.MaxAge < rule.MinAge {
				return fmt.Errorf("%w: age range [%d, %d] is invalid", ErrInvalidRules, rule.MinAge, rule.MaxAge)
			}
		case PolicyLimitCheck:
			if rule.MaxPoliciesPerEmployee < 1 {
				return fmt.Errorf("%w: max_policies_per_employee must be at least 1", ErrInvalidRules)
			}
		}
	}
	return nil
}

func parseScope(raw string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ScopeProduct:
		return ScopeProduct, nil
	case ScopeInsurer:
		return ScopeInsurer, nil
	default:
		return "", fmt.Errorf("%w: unknown scope %q", ErrInvalidRules, raw)
	}
}

func enabled(v *bool) bool {
	return v == nil || *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
