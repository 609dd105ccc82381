package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Service interface {
	// RulesForProduct resolves product -> insurer -> channel config and
	// returns the parsed rule set. An unconfigured channel yields an empty set.
	RulesForProduct(ctx context.Context, db *gorm.DB, productID int64, channel string) (RuleSet, error)
	// Evaluate runs rs against app on db, which is the submission transaction
	// when called from application creation.
	Evaluate(ctx context.Context, db *gorm.DB, rs RuleSet, app ApplicationContext) error
	// ParseRules parses raw with the current defaults.
	ParseRules(raw []byte) (RuleSet, error)
	// GetProductRules is the read endpoint behind the portal.
	GetProductRules(ctx context.Context, productID, channel string) (RuleSet, error)
}

var (
	ErrInvalidRules     = errors.New("invalid_intercept_rules")
	ErrInvalidProductID = errors.New("invalid_product_id")
	ErrProductNotFound  = errors.New("product_not_found")
	// ErrStoredRulesInvalid marks a persisted rule blob that no longer
	// parses. It is a server fault, never a client one.
	ErrStoredRulesInvalid = errors.New("stored_intercept_rules_invalid")
)
