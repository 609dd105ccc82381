package domain

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/lookup_mock.go -package=mock . Lookup

// Lookup answers the roster questions that need existing applications.
// Implementations must run on the supplied handle so checks see the
// submission transaction.
type Lookup interface {
	HasOpenApplication(ctx context.Context, db *gorm.DB, q PersonQuery) (bool, error)
	CountPolicies(ctx context.Context, db *gorm.DB, q PersonQuery) (int64, error)
}

type PersonQuery struct {
	Scope    Scope
	ScopeID  int64
	Statuses []string
	IDNumber string
}

type Company struct {
	Name     string
	Province string
	City     string
}

type Person struct {
	Name      string
	IDNumber  string
	BirthDate *time.Time
}

// ApplicationContext is the part of a submission the rules look at.
type ApplicationContext struct {
	ProductID    int64
	InsurerID    int64
	Company      Company
	InsuredCount int
	Persons      []Person
}

type CheckInput struct {
	Ctx    context.Context
	DB     *gorm.DB
	Lookup Lookup
	Today  time.Time
	App    ApplicationContext

	DuplicateStatuses []string
	PolicyStatuses    []string
}

func (in *CheckInput) scopeID(scope Scope) int64 {
	if scope == ScopeInsurer {
		return in.App.InsurerID
	}
	return in.App.ProductID
}

func (r RegionRestriction) Check(in *CheckInput) error {
	province := in.App.Company.Province
	for _, denied := range r.DeniedRegions {
		if RegionMatches(province, denied) {
			return newViolation(KindRegionDenied, denied,
				"applications from region %s are not accepted", strings.TrimSpace(province))
		}
	}
	return nil
}

func (r MinInsuredCount) Check(in *CheckInput) error {
	if in.App.InsuredCount < r.MinCount {
		return newViolation(KindInsuredCountTooLow, "",
			"insured count %d is below the minimum of %d", in.App.InsuredCount, r.MinCount)
	}
	return nil
}

func (r AgeRestriction) Check(in *CheckInput) error {
	for _, p := range in.App.Persons {
		if strings.TrimSpace(p.IDNumber) == "" || p.BirthDate == nil {
			continue
		}
		age := AgeOn(*p.BirthDate, in.Today)
		if age < r.MinAge || age > r.MaxAge {
			return newViolation(KindAgeOutOfRange, personLabel(p),
				"insured person %s is %d, outside the accepted age range %d-%d",
				personLabel(p), age, r.MinAge, r.MaxAge)
		}
	}
	return nil
}

func (r DuplicateCheck) Check(in *CheckInput) error {
	for _, p := range in.App.Persons {
		idNumber := strings.TrimSpace(p.IDNumber)
		if idNumber == "" {
			continue
		}
		found, err := in.Lookup.HasOpenApplication(in.Ctx, in.DB, PersonQuery{
			Scope:    r.Scope,
			ScopeID:  in.scopeID(r.Scope),
			Statuses: in.DuplicateStatuses,
			IDNumber: idNumber,
		})
		if err != nil {
			return err
		}
		if found {
			return newViolation(KindDuplicateApplication, personLabel(p),
				"insured person %s already has an open application for this %s", personLabel(p), r.Scope)
		}
	}
	return nil
}

func (r PolicyLimitCheck) Check(in *CheckInput) error {
	for _, p := range in.App.Persons {
		idNumber := strings.TrimSpace(p.IDNumber)
		if idNumber == "" {
			continue
		}
		count, err := in.Lookup.CountPolicies(in.Ctx, in.DB, PersonQuery{
			Scope:    r.Scope,
			ScopeID:  in.scopeID(r.Scope),
			Statuses: in.PolicyStatuses,
			IDNumber: idNumber,
		})
		if err != nil {
			return err
		}
		if count >= int64(r.MaxPoliciesPerEmployee) {
			return newViolation(KindPolicyLimitExceeded, personLabel(p),
				"insured person %s already holds %d policies, the limit is %d",
				personLabel(p), count, r.MaxPoliciesPerEmployee)
		}
	}
	return nil
}

// requiresRoster reports whether the rule only looks at insured persons.
func requiresRoster(r Rule) bool {
	switch r.(type) {
	case AgeRestriction, DuplicateCheck, PolicyLimitCheck:
		return true
	default:
		return false
	}
}

// Evaluate runs the rules in order and returns the first violation or
// lookup error. Roster rules are skipped when no persons were submitted.
func (rs RuleSet) Evaluate(in *CheckInput) error {
	for _, r := range rs.Rules {
		if requiresRoster(r) && len(in.App.Persons) == 0 {
			continue
		}
		if err := r.Check(in); err != nil {
			return err
		}
	}
	return nil
}

// AgeOn returns completed years between birth and today.
func AgeOn(birth, today time.Time) int {
	by, bm, bd := birth.Date()
	ty, tm, td := today.Date()
	age := ty - by
	if tm < bm || (tm == bm && td < bd) {
		age--
	}
	return age
}

var regionSuffixes = []string{"特别行政区", "维吾尔自治区", "壮族自治区", "回族自治区", "自治区", "省", "市"}

func normalizeRegion(s string) string {
	s = strings.TrimSpace(s)
	for _, suffix := range regionSuffixes {
		if trimmed := strings.TrimSuffix(s, suffix); trimmed != s && trimmed != "" {
			return trimmed
		}
	}
	return s
}

// RegionMatches compares a company province with a denied region name
// after stripping administrative suffixes ("广东" matches "广东省"). Names
// must otherwise be equal; a shorter name never matches by prefix.
func RegionMatches(province, denied string) bool {
	p := normalizeRegion(province)
	d := normalizeRegion(denied)
	if p == "" || d == "" {
		return false
	}
	return strings.EqualFold(p, d)
}

func personLabel(p Person) string {
	name := strings.TrimSpace(p.Name)
	id := maskIDNumber(p.IDNumber)
	switch {
	case name != "" && id != "":
		return name + " (" + id + ")"
	case name != "":
		return name
	default:
		return id
	}
}

// maskIDNumber keeps the first 4 and last 4 characters.
func maskIDNumber(id string) string {
	id = strings.TrimSpace(id)
	runes := []rune(id)
	if len(runes) <= 8 {
		return id
	}
	return string(runes[:4]) + strings.Repeat("*", len(runes)-8) + string(runes[len(runes)-4:])
}
