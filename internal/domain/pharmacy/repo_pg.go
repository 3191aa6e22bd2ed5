package pharmacy

import (
	"context"
	"fmt"
	"time"

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

// =========== Medicine Repository ===========

type medicineRepoPG struct{ pool *pgxpool.Pool }

func NewMedicineRepoPG(pool *pgxpool.Pool) MedicineRepository { return &medicineRepoPG{pool: pool} }

func (r *medicineRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const medicineCols = `id, name, category, price, quantity, min_quantity,
	expiry_date, supplier, batch_no, created_at, updated_at`

func (r *medicineRepoPG) scanMedicine(row pgx.Row) (*Medicine, error) {
	var m Medicine
	err := row.Scan(&m.ID, &m.Name, &m.Category, &m.Price, &m.Quantity, &m.MinQuantity,
		&m.ExpiryDate, &m.Supplier, &m.BatchNo, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *medicineRepoPG) Create(ctx context.Context, m *Medicine) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medicines (id, name, category, price, quantity, min_quantity,
			expiry_date, supplier, batch_no)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		m.ID, m.Name, m.Category, m.Price, m.Quantity, m.MinQuantity,
		m.ExpiryDate, m.Supplier, m.BatchNo)
	return err
}

func (r *medicineRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return r.scanMedicine(r.conn(ctx).QueryRow(ctx, `SELECT `+medicineCols+` FROM medicines WHERE id = $1`, id))
}

func (r *medicineRepoPG) Update(ctx context.Context, m *Medicine) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medicines SET name=$2, category=$3, price=$4, min_quantity=$5,
			expiry_date=$6, supplier=$7, batch_no=$8, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.Category, m.Price, m.MinQuantity,
		m.ExpiryDate, m.Supplier, m.BatchNo)
	return err
}

func (r *medicineRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medicines WHERE id = $1`, id)
	return err
}

// AdjustQuantity applies a stock delta. The WHERE clause refuses any delta
// that would drive the quantity negative, so the database enforces the
// invariant even if a caller skips validation.
func (r *medicineRepoPG) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medicines SET quantity = quantity + $2, updated_at=NOW()
		WHERE id = $1 AND quantity + $2 >= 0`, id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stock adjustment of %d rejected for medicine %s", delta, id)
	}
	return nil
}

func (r *medicineRepoPG) List(ctx context.Context, f MedicineFilter, limit, offset int) ([]*Medicine, int, error) {
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
	if f.Search != "" {
		add(`name ILIKE $%d`, "%"+f.Search+"%")
	}
	if f.Category != "" {
		add(`category = $%d`, f.Category)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medicines`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+medicineCols+` FROM medicines%s ORDER BY name LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Medicine
	for rows.Next() {
		m, err := r.scanMedicine(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, nil
}

func (r *medicineRepoPG) ListLowStock(ctx context.Context) ([]*Medicine, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+medicineCols+` FROM medicines WHERE quantity <= min_quantity ORDER BY quantity`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Medicine
	for rows.Next() {
		m, err := r.scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, nil
}

func (r *medicineRepoPG) ListExpiringBy(ctx context.Context, cutoff time.Time) ([]*Medicine, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+medicineCols+` FROM medicines WHERE expiry_date IS NOT NULL AND expiry_date <= $1 ORDER BY expiry_date`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Medicine
	for rows.Next() {
		m, err := r.scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, nil
}

// =========== Sale Repository ===========

type saleRepoPG struct{ pool *pgxpool.Pool }

func NewSaleRepoPG(pool *pgxpool.Pool) SaleRepository { return &saleRepoPG{pool: pool} }

func (r *saleRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const saleCols = `id, medicine_id, patient_id, quantity, unit_price, total_amount,
	prescription_no, sale_date, created_at`

func (r *saleRepoPG) scanSale(row pgx.Row) (*Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.MedicineID, &s.PatientID, &s.Quantity, &s.UnitPrice, &s.TotalAmount,
		&s.PrescriptionNo, &s.SaleDate, &s.CreatedAt)
	return &s, err
}

func (r *saleRepoPG) Create(ctx context.Context, s *Sale) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sales (id, medicine_id, patient_id, quantity, unit_price, total_amount,
			prescription_no, sale_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		s.ID, s.MedicineID, s.PatientID, s.Quantity, s.UnitPrice, s.TotalAmount,
		s.PrescriptionNo, s.SaleDate)
	return err
}

func (r *saleRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Sale, error) {
	return r.scanSale(r.conn(ctx).QueryRow(ctx, `SELECT `+saleCols+` FROM sales WHERE id = $1`, id))
}

func (r *saleRepoPG) Update(ctx context.Context, s *Sale) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE sales SET quantity=$2, unit_price=$3, total_amount=$4,
			prescription_no=$5, sale_date=$6
		WHERE id = $1`,
		s.ID, s.Quantity, s.UnitPrice, s.TotalAmount,
		s.PrescriptionNo, s.SaleDate)
	return err
}

func (r *saleRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	return err
}

func (r *saleRepoPG) List(ctx context.Context, medicineID uuid.UUID, limit, offset int) ([]*Sale, int, error) {
	where := ``
	args := []interface{}{}
	if medicineID != uuid.Nil {
		where = ` WHERE medicine_id = $1`
		args = append(args, medicineID)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM sales`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+saleCols+` FROM sales%s ORDER BY sale_date DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Sale
	for rows.Next() {
		s, err := r.scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, nil
}

func (r *saleRepoPG) CountByMedicine(ctx context.Context, medicineID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM sales WHERE medicine_id = $1`, medicineID).Scan(&n)
	return n, err
}

// =========== Purchase Repository ===========

type purchaseRepoPG struct{ pool *pgxpool.Pool }

func NewPurchaseRepoPG(pool *pgxpool.Pool) PurchaseRepository { return &purchaseRepoPG{pool: pool} }

func (r *purchaseRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const purchaseCols = `id, medicine_id, supplier, quantity, unit_price, total_amount,
	batch_no, expiry_date, invoice_no, purchase_date, created_at`

func (r *purchaseRepoPG) scanPurchase(row pgx.Row) (*Purchase, error) {
	var p Purchase
	err := row.Scan(&p.ID, &p.MedicineID, &p.Supplier, &p.Quantity, &p.UnitPrice, &p.TotalAmount,
		&p.BatchNo, &p.ExpiryDate, &p.InvoiceNo, &p.PurchaseDate, &p.CreatedAt)
	return &p, err
}

func (r *purchaseRepoPG) Create(ctx context.Context, p *Purchase) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO purchases (id, medicine_id, supplier, quantity, unit_price, total_amount,
			batch_no, expiry_date, invoice_no, purchase_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.MedicineID, p.Supplier, p.Quantity, p.UnitPrice, p.TotalAmount,
		p.BatchNo, p.ExpiryDate, p.InvoiceNo, p.PurchaseDate)
	return err
}

func (r *purchaseRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Purchase, error) {
	return r.scanPurchase(r.conn(ctx).QueryRow(ctx, `SELECT `+purchaseCols+` FROM purchases WHERE id = $1`, id))
}

func (r *purchaseRepoPG) Update(ctx context.Context, p *Purchase) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE purchases SET supplier=$2, quantity=$3, unit_price=$4, total_amount=$5,
			batch_no=$6, expiry_date=$7, invoice_no=$8, purchase_date=$9
		WHERE id = $1`,
		p.ID, p.Supplier, p.Quantity, p.UnitPrice, p.TotalAmount,
		p.BatchNo, p.ExpiryDate, p.InvoiceNo, p.PurchaseDate)
	return err
}

func (r *purchaseRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	return err
}

func (r *purchaseRepoPG) List(ctx context.Context, medicineID uuid.UUID, limit, offset int) ([]*Purchase, int, error) {
	where := ``
	args := []interface{}{}
	if medicineID != uuid.Nil {
		where = ` WHERE medicine_id = $1`
		args = append(args, medicineID)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM purchases`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+purchaseCols+` FROM purchases%s ORDER BY purchase_date DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	rows, err := r.conn(ctx).Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Purchase
	for rows.Next() {
		p, err := r.scanPurchase(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

func (r *purchaseRepoPG) CountByMedicine(ctx context.Context, medicineID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM purchases WHERE medicine_id = $1`, medicineID).Scan(&n)
	return n, err
}
