package prescription

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

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescriptions (id, patient_id, doctor_id, doctor_name, doctor_phone, issued_at, emergency)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.PatientID, p.DoctorID, p.DoctorName, p.DoctorPhone, p.IssuedAt, p.Emergency,
	)
	if err != nil {
		return fmt.Errorf("insert prescription: %w", err)
	}

	for i, m := range p.Medicines {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO prescription_lines (
				prescription_id, position, name, brand,
				morning, afternoon, night, timing, days, total, status
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
			p.ID, i, m.Name, m.Brand,
			m.Morning, m.Afternoon, m.Night, m.Timing, m.Days, m.Total, m.Status,
		)
		if err != nil {
			return fmt.Errorf("insert prescription line: %w", err)
		}
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*Prescription, error) {
	p := &Prescription{}
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, doctor_name, doctor_phone, issued_at, emergency
		FROM prescriptions WHERE id = $1`, id).Scan(
		&p.ID, &p.PatientID, &p.DoctorID, &p.DoctorName, &p.DoctorPhone, &p.IssuedAt, &p.Emergency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get prescription: %w", err)
	}

	if err := r.loadLines(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID string) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, doctor_id, doctor_name, doctor_phone, issued_at, emergency
		FROM prescriptions
		WHERE patient_id = $1
		ORDER BY issued_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	defer rows.Close()

	var out []*Prescription
	for rows.Next() {
		p := &Prescription{}
		if err := rows.Scan(&p.ID, &p.PatientID, &p.DoctorID, &p.DoctorName, &p.DoctorPhone, &p.IssuedAt, &p.Emergency); err != nil {
			return nil, fmt.Errorf("scan prescription: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prescriptions: %w", err)
	}

	for _, p := range out {
		if err := r.loadLines(ctx, p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *repoPG) MarkLineDispensed(ctx context.Context, prescriptionID, medicineName string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescription_lines
		SET status = 'dispensed'
		WHERE prescription_id = $1 AND name = $2 AND status = 'pending'`,
		prescriptionID, medicineName)
	if err != nil {
		return fmt.Errorf("mark line dispensed: %w", err)
	}
	return nil
}

func (r *repoPG) loadLines(ctx context.Context, p *Prescription) error {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT name, brand, morning, afternoon, night, timing, days, total, status
		FROM prescription_lines
		WHERE prescription_id = $1
		ORDER BY position ASC`, p.ID)
	if err != nil {
		return fmt.Errorf("load prescription lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m Medicine
		if err := rows.Scan(&m.Name, &m.Brand, &m.Morning, &m.Afternoon, &m.Night, &m.Timing, &m.Days, &m.Total, &m.Status); err != nil {
			return fmt.Errorf("scan prescription line: %w", err)
		}
		p.Medicines = append(p.Medicines, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate prescription lines: %w", err)
	}
	return nil
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
