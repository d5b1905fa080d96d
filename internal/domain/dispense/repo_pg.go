package dispense

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

const logCols = `id, prescription_id, patient_id, pharmacy_id, pharmacy_name, doctor_id,
	medicine_name, brand, quantity, dispensed_at, emergency, order_id`

// Create relies on the unique index over (prescription_id, medicine_name):
// a conflicting insert affects zero rows, which surfaces as
// ErrAlreadyDispensed without clobbering the original log.
func (r *repoPG) Create(ctx context.Context, l *DispenseLog) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO dispense_logs (
			id, prescription_id, patient_id, pharmacy_id, pharmacy_name, doctor_id,
			medicine_name, brand, quantity, dispensed_at, emergency, order_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (prescription_id, medicine_name) DO NOTHING`,
		l.ID, l.PrescriptionID, l.PatientID, l.PharmacyID, l.PharmacyName, l.DoctorID,
		l.MedicineName, l.Brand, l.Quantity, l.DispensedAt, l.Emergency, l.OrderID,
	)
	if err != nil {
		return fmt.Errorf("insert dispense log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyDispensed
	}
	return nil
}

func (r *repoPG) SetOrderID(ctx context.Context, id, orderID string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE dispense_logs SET order_id = $2 WHERE id = $1`, id, orderID)
	if err != nil {
		return fmt.Errorf("set dispense order id: %w", err)
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID string) ([]*DispenseLog, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+logCols+` FROM dispense_logs
		 WHERE patient_id = $1
		 ORDER BY dispensed_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list dispense logs: %w", err)
	}
	defer rows.Close()

	var logs []*DispenseLog
	for rows.Next() {
		var l DispenseLog
		if err := rows.Scan(
			&l.ID, &l.PrescriptionID, &l.PatientID, &l.PharmacyID, &l.PharmacyName, &l.DoctorID,
			&l.MedicineName, &l.Brand, &l.Quantity, &l.DispensedAt, &l.Emergency, &l.OrderID,
		); err != nil {
			return nil, fmt.Errorf("scan dispense log: %w", err)
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispense logs: %w", err)
	}
	return logs, nil
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
