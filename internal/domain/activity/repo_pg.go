package activity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type activityRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &activityRepoPG{pool: pool} }

func (r *activityRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const logCols = `id, user_id, user_role, entity_type, entity_id, action, method, path,
	ip_address, user_agent, request_id, status_code, occurred_at, created_at`

func (r *activityRepoPG) scanLog(row pgx.Row) (*Log, error) {
	var l Log
	err := row.Scan(&l.ID, &l.UserID, &l.UserRole, &l.EntityType, &l.EntityID, &l.Action,
		&l.Method, &l.Path, &l.IPAddress, &l.UserAgent, &l.RequestID, &l.StatusCode,
		&l.OccurredAt, &l.CreatedAt)
	return &l, err
}

func (r *activityRepoPG) Create(ctx context.Context, l *Log) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO activity_log (id, user_id, user_role, entity_type, entity_id, action,
			method, path, ip_address, user_agent, request_id, status_code, occurred_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		l.ID, l.UserID, l.UserRole, l.EntityType, l.EntityID, l.Action,
		l.Method, l.Path, l.IPAddress, l.UserAgent, l.RequestID, l.StatusCode, l.OccurredAt)
	return err
}

func (r *activityRepoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Log, int, error) {
	where := ``
	args := []interface{}{}
	add := func(clause string, v interface{}) {
		args = append(args, v)
		if where == "" {
			where = ` WHERE `
		} else {
			where += ` AND `
		}
		where += fmt.Sprintf(clause, len(args))
	}
	if f.UserID != "" {
		add(`user_id = $%d`, f.UserID)
	}
	if f.EntityType != "" {
		add(`entity_type = $%d`, f.EntityType)
	}
	if f.Action != "" {
		add(`action = $%d`, f.Action)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM activity_log`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+logCols+` FROM activity_log%s ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Log
	for rows.Next() {
		l, err := r.scanLog(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, nil
}

func (r *activityRepoPG) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM activity_log WHERE occurred_at < NOW() - make_interval(days => $1)`, days)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
