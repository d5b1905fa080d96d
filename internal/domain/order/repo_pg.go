package order

import (
	"context"
	"errors"
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

const orderCols = `id, patient_id, patient_name, patient_phone, pharmacy_id, prescription_id, status, placed_at`

func (r *repoPG) Create(ctx context.Context, o *Order) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO orders (id, patient_id, patient_name, patient_phone, pharmacy_id, prescription_id, status, placed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		o.ID, o.PatientID, o.PatientName, o.PatientPhone, o.PharmacyID, o.PrescriptionID, o.Status, o.PlacedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*Order, error) {
	return scanOrder(r.conn(ctx).QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, o *Order) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`, o.ID, o.Status)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

func (r *repoPG) ListPendingByPharmacy(ctx context.Context, pharmacyID string) ([]*Order, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+orderCols+` FROM orders
		 WHERE pharmacy_id = $1 AND status = 'pending'
		 ORDER BY placed_at ASC`, pharmacyID)
	if err != nil {
		return nil, fmt.Errorf("list pharmacy orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID string) ([]*Order, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+orderCols+` FROM orders
		 WHERE patient_id = $1
		 ORDER BY placed_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list patient orders: %w", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *repoPG) GetPendingByPrescription(ctx context.Context, prescriptionID string) (*Order, error) {
	return scanOrder(r.conn(ctx).QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders
		 WHERE prescription_id = $1 AND status = 'pending'
		 ORDER BY placed_at ASC
		 LIMIT 1`, prescriptionID))
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.PatientID, &o.PatientName, &o.PatientPhone, &o.PharmacyID, &o.PrescriptionID, &o.Status, &o.PlacedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]*Order, error) {
	var orders []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.PatientID, &o.PatientName, &o.PatientPhone, &o.PharmacyID, &o.PrescriptionID, &o.Status, &o.PlacedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
