package activity

import "context"

type Repository interface {
	Create(ctx context.Context, l *Log) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Log, int, error)
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

type Filter struct {
	UserID     string
	EntityType string
	Action     string
}
