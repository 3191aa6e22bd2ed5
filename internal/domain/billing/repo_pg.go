package billing

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

// =========== Bill Repository ===========

type billRepoPG struct{ pool *pgxpool.Pool }

func NewBillRepoPG(pool *pgxpool.Pool) BillRepository { return &billRepoPG{pool: pool} }

func (r *billRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const billCols = `id, bill_no, patient_id, admission_id, doctor_fee, room_charge,
	medicine_charge, other_charge, total_amount, status, bill_date, notes,
	created_at, updated_at`

func (r *billRepoPG) scanBill(row pgx.Row) (*Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.BillNo, &b.PatientID, &b.AdmissionID, &b.DoctorFee, &b.RoomCharge,
		&b.MedicineCharge, &b.OtherCharge, &b.TotalAmount, &b.Status, &b.BillDate, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *billRepoPG) NextBillNo(ctx context.Context) (string, error) {
	var n int64
	if err := r.conn(ctx).QueryRow(ctx, `SELECT nextval('bill_no_seq')`).Scan(&n); err != nil {
		return "", err
	}
	return fmt.Sprintf("BILL%04d", n), nil
}

func (r *billRepoPG) Create(ctx context.Context, b *Bill) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bills (id, bill_no, patient_id, admission_id, doctor_fee, room_charge,
			medicine_charge, other_charge, total_amount, status, bill_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		b.ID, b.BillNo, b.PatientID, b.AdmissionID, b.DoctorFee, b.RoomCharge,
		b.MedicineCharge, b.OtherCharge, b.TotalAmount, b.Status, b.BillDate, b.Notes)
	return err
}

func (r *billRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Bill, error) {
	return r.scanBill(r.conn(ctx).QueryRow(ctx, `SELECT `+billCols+` FROM bills WHERE id = $1`, id))
}

func (r *billRepoPG) Update(ctx context.Context, b *Bill) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE bills SET admission_id=$2, doctor_fee=$3, room_charge=$4,
			medicine_charge=$5, other_charge=$6, total_amount=$7, status=$8,
			bill_date=$9, notes=$10, updated_at=NOW()
		WHERE id = $1`,
		b.ID, b.AdmissionID, b.DoctorFee, b.RoomCharge,
		b.MedicineCharge, b.OtherCharge, b.TotalAmount, b.Status,
		b.BillDate, b.Notes)
	return err
}

func (r *billRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE bills SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	return err
}

func (r *billRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM bills WHERE id = $1`, id)
	return err
}

func (r *billRepoPG) List(ctx context.Context, f BillFilter, limit, offset int) ([]*Bill, int, error) {
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
	if f.Status != "" {
		add(`status = $%d`, f.Status)
	}
	if f.PatientID != uuid.Nil {
		add(`patient_id = $%d`, f.PatientID)
	}
	if f.DateFrom != nil {
		add(`bill_date >= $%d`, *f.DateFrom)
	}
	if f.DateTo != nil {
		add(`bill_date <= $%d`, *f.DateTo)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM bills`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+billCols+` FROM bills%s ORDER BY bill_date DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Bill
	for rows.Next() {
		b, err := r.scanBill(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, nil
}

func (r *billRepoPG) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *billRepoPG) Summary(ctx context.Context) (*Summary, error) {
	var s Summary
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(total_amount), 0),
			COUNT(*) FILTER (WHERE status = 'Pending'),
			COUNT(*) FILTER (WHERE status = 'Partial'),
			COUNT(*) FILTER (WHERE status = 'Paid')
		FROM bills`).Scan(&s.TotalBills, &s.TotalBilled, &s.PendingBills, &s.PartialBills, &s.PaidBills)
	if err != nil {
		return nil, err
	}
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments`).Scan(&s.TotalCollected); err != nil {
		return nil, err
	}
	return &s, nil
}

// =========== Payment Repository ===========

type paymentRepoPG struct{ pool *pgxpool.Pool }

func NewPaymentRepoPG(pool *pgxpool.Pool) PaymentRepository { return &paymentRepoPG{pool: pool} }

func (r *paymentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const paymentCols = `id, bill_id, amount, method, transaction_id, notes, payment_date, created_at`

func (r *paymentRepoPG) scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.BillID, &p.Amount, &p.Method, &p.TransactionID, &p.Notes,
		&p.PaymentDate, &p.CreatedAt)
	return &p, err
}

func (r *paymentRepoPG) Create(ctx context.Context, p *Payment) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO payments (id, bill_id, amount, method, transaction_id, notes, payment_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.BillID, p.Amount, p.Method, p.TransactionID, p.Notes, p.PaymentDate)
	return err
}

func (r *paymentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return r.scanPayment(r.conn(ctx).QueryRow(ctx, `SELECT `+paymentCols+` FROM payments WHERE id = $1`, id))
}

func (r *paymentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	return err
}

func (r *paymentRepoPG) ListByBill(ctx context.Context, billID uuid.UUID) ([]*Payment, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+paymentCols+` FROM payments WHERE bill_id = $1 ORDER BY payment_date`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, nil
}

func (r *paymentRepoPG) SumByBill(ctx context.Context, billID uuid.UUID) (float64, error) {
	var sum float64
	err := r.conn(ctx).QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE bill_id = $1`, billID).Scan(&sum)
	return sum, err
}

func (r *paymentRepoPG) CountByBill(ctx context.Context, billID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE bill_id = $1`, billID).Scan(&n)
	return n, err
}
