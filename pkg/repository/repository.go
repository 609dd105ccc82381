package repository

import (
	"context"

	"github.com/smallbiznis/polisa/pkg/db/option"
)

// Repository is a generic gorm-backed store for catalog rows that need no
// hand-written SQL. FindOne returns nil, nil when nothing matches.
type Repository[T any] interface {
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
}
