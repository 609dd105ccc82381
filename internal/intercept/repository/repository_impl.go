package repository

import (
	"context"

	"github.com/smallbiznis/polisa/internal/intercept/domain"
	"gorm.io/gorm"
)

type lookup struct{}

func Provide() domain.Lookup {
	return &lookup{}
}

func scopeColumn(scope domain.Scope) string {
	if scope == domain.ScopeInsurer {
		return "a.insurer_id"
	}
	return "a.product_id"
}

func (l *lookup) HasOpenApplication(ctx context.Context, db *gorm.DB, q domain.PersonQuery) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM applications a
		 JOIN insured_persons ip ON ip.application_id = a.id
		 WHERE `+scopeColumn(q.Scope)+` = ? AND a.status IN ? AND ip.id_number = ?`,
		q.ScopeID,
		q.Statuses,
		q.IDNumber,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (l *lookup) CountPolicies(ctx context.Context, db *gorm.DB, q domain.PersonQuery) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(DISTINCT a.id)
		 FROM applications a
		 JOIN insured_persons ip ON ip.application_id = a.id
		 WHERE `+scopeColumn(q.Scope)+` = ? AND a.status IN ? AND ip.id_number = ?`,
		q.ScopeID,
		q.Statuses,
		q.IDNumber,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
