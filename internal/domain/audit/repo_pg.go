package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rxledger/rxledger/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const logCols = `id, actor_id, actor_name, actor_role, patient_id, accessed_at`

func (r *repoPG) Append(ctx context.Context, l *EmergencyAccessLog) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO emergency_logs (id, actor_id, actor_name, actor_role, patient_id, accessed_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		l.ID, l.ActorID, l.ActorName, l.ActorRole, l.PatientID, l.AccessedAt,
	)
	if err != nil {
		return fmt.Errorf("insert emergency log: %w", err)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*EmergencyAccessLog, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM emergency_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count emergency logs: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+logCols+` FROM emergency_logs
		 ORDER BY accessed_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list emergency logs: %w", err)
	}
	defer rows.Close()

	logs, err := collectLogs(rows)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID string) ([]*EmergencyAccessLog, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+logCols+` FROM emergency_logs
		 WHERE patient_id = $1
		 ORDER BY accessed_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list emergency logs by patient: %w", err)
	}
	defer rows.Close()

	return collectLogs(rows)
}

func collectLogs(rows pgx.Rows) ([]*EmergencyAccessLog, error) {
	var logs []*EmergencyAccessLog
	for rows.Next() {
		var l EmergencyAccessLog
		if err := rows.Scan(&l.ID, &l.ActorID, &l.ActorName, &l.ActorRole, &l.PatientID, &l.AccessedAt); err != nil {
			return nil, fmt.Errorf("scan emergency log: %w", err)
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emergency logs: %w", err)
	}
	return logs, nil
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
